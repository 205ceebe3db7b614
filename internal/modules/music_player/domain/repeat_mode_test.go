package domain

import "testing"

func TestRepeatMode_String(t *testing.T) {
	tests := []struct {
		name string
		mode RepeatMode
		want string
	}{
		{
			name: "RepeatModeDisabled returns off",
			mode: RepeatModeDisabled,
			want: "off",
		},
		{
			name: "RepeatModeSong returns song",
			mode: RepeatModeSong,
			want: "song",
		},
		{
			name: "RepeatModeQueue returns queue",
			mode: RepeatModeQueue,
			want: "queue",
		},
		{
			name: "unknown mode returns off",
			mode: RepeatMode(99),
			want: "off",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.String(); got != tt.want {
				t.Errorf("RepeatMode.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRepeatMode_Next(t *testing.T) {
	tests := []struct {
		name string
		mode RepeatMode
		want RepeatMode
	}{
		{
			name: "off advances to song",
			mode: RepeatModeDisabled,
			want: RepeatModeSong,
		},
		{
			name: "song advances to queue",
			mode: RepeatModeSong,
			want: RepeatModeQueue,
		},
		{
			name: "queue wraps to off",
			mode: RepeatModeQueue,
			want: RepeatModeDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Next(); got != tt.want {
				t.Errorf("RepeatMode.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRepeatMode(t *testing.T) {
	tests := []struct {
		input string
		want  RepeatMode
	}{
		{input: "song", want: RepeatModeSong},
		{input: "queue", want: RepeatModeQueue},
		{input: "off", want: RepeatModeDisabled},
		{input: "bogus", want: RepeatModeDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseRepeatMode(tt.input); got != tt.want {
				t.Errorf("ParseRepeatMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
