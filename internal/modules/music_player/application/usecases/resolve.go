package usecases

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// ResolveGuildID extracts a guild ID from any of the supported
// guild-identifying values: a snowflake, a string ID, an interaction, a
// message, or a voice state. Anything else is an invalid argument.
func ResolveGuildID(resolvable any) (snowflake.ID, error) {
	switch v := resolvable.(type) {
	case snowflake.ID:
		return v, nil
	case string:
		id, err := snowflake.Parse(v)
		if err != nil {
			return 0, fmt.Errorf("%w: malformed guild ID %q", domain.ErrInvalidArgument, v)
		}
		return id, nil
	case *discordgo.Interaction:
		if v == nil {
			return 0, fmt.Errorf("%w: nil interaction", domain.ErrInvalidArgument)
		}
		return ResolveGuildID(v.GuildID)
	case *discordgo.Message:
		if v == nil {
			return 0, fmt.Errorf("%w: nil message", domain.ErrInvalidArgument)
		}
		return ResolveGuildID(v.GuildID)
	case *discordgo.VoiceState:
		if v == nil {
			return 0, fmt.Errorf("%w: nil voice state", domain.ErrInvalidArgument)
		}
		return ResolveGuildID(v.GuildID)
	default:
		return 0, fmt.Errorf("%w: cannot resolve a guild ID from %T", domain.ErrInvalidArgument, resolvable)
	}
}
