package usecases

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

func TestResolveGuildID(t *testing.T) {
	want := snowflake.ID(123456789)

	tests := []struct {
		name       string
		resolvable any
		want       snowflake.ID
		wantErr    error
	}{
		{
			name:       "snowflake ID",
			resolvable: want,
			want:       want,
		},
		{
			name:       "string ID",
			resolvable: "123456789",
			want:       want,
		},
		{
			name:       "interaction",
			resolvable: &discordgo.Interaction{GuildID: "123456789"},
			want:       want,
		},
		{
			name:       "message",
			resolvable: &discordgo.Message{GuildID: "123456789"},
			want:       want,
		},
		{
			name:       "voice state",
			resolvable: &discordgo.VoiceState{GuildID: "123456789"},
			want:       want,
		},
		{
			name:       "malformed string",
			resolvable: "not-a-snowflake",
			wantErr:    domain.ErrInvalidArgument,
		},
		{
			name:       "nil interaction",
			resolvable: (*discordgo.Interaction)(nil),
			wantErr:    domain.ErrInvalidArgument,
		},
		{
			name:       "unsupported type",
			resolvable: 3.14,
			wantErr:    domain.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveGuildID(tt.resolvable)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveGuildID() = %d, want %d", got, tt.want)
			}
		})
	}
}
