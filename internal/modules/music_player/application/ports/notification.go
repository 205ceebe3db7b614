package ports

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// NotificationSender defines the interface for sending playback
// notifications to Discord channels.
type NotificationSender interface {
	// SendNowPlaying sends a "Now Playing" embed and returns the message ID.
	SendNowPlaying(channelID snowflake.ID, song *domain.Song) (messageID snowflake.ID, err error)

	// SendSongQueued announces a song added to the queue at the given
	// 1-based position.
	SendSongQueued(channelID snowflake.ID, song *domain.Song, position int) error

	// SendPlaylistQueued announces a playlist added to the queue.
	SendPlaylistQueued(channelID snowflake.ID, playlist *domain.Playlist) error

	// SendInfo sends a plain informational embed.
	SendInfo(channelID snowflake.ID, message string) error

	// SendError sends an error message embed.
	SendError(channelID snowflake.ID, message string) error

	// DeleteMessage deletes a previously sent message.
	DeleteMessage(channelID, messageID snowflake.ID) error
}
