package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// VoiceStateProvider defines the interface for reading Discord voice state.
type VoiceStateProvider interface {
	// GetUserVoiceChannel returns the voice channel ID the user is in.
	// Returns nil if the user is not in a voice channel.
	GetUserVoiceChannel(guildID, userID snowflake.ID) (*snowflake.ID, error)

	// ListenerCount returns the number of non-bot members in the channel.
	ListenerCount(guildID, channelID snowflake.ID) (int, error)
}
