package domain

// RepeatMode controls what happens when the current song finishes naturally.
type RepeatMode int

const (
	RepeatModeDisabled RepeatMode = iota // advance to the next song
	RepeatModeSong                       // replay the current song
	RepeatModeQueue                      // rotate the finished song to the tail
)

// String returns a human-readable representation of the repeat mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatModeSong:
		return "song"
	case RepeatModeQueue:
		return "queue"
	default:
		return "off"
	}
}

// Next returns the mode that follows in the cycle off -> song -> queue -> off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatModeDisabled:
		return RepeatModeSong
	case RepeatModeSong:
		return RepeatModeQueue
	default:
		return RepeatModeDisabled
	}
}

// ParseRepeatMode converts a string to a RepeatMode.
func ParseRepeatMode(s string) RepeatMode {
	switch s {
	case "song":
		return RepeatModeSong
	case "queue":
		return RepeatModeQueue
	default:
		return RepeatModeDisabled
	}
}
