package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceGateway defines the interface for voice channel connection operations.
type VoiceGateway interface {
	// JoinChannel connects the bot to the specified voice channel. Joining
	// a channel while connected elsewhere in the guild moves the bot.
	JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error

	// LeaveChannel disconnects the bot from its voice channel in the guild.
	LeaveChannel(ctx context.Context, guildID snowflake.ID) error
}
