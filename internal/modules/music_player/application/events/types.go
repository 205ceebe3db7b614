package events

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// StreamEndReason represents why an audio stream ended.
type StreamEndReason string

const (
	// StreamEndFinished means the stream played to its end.
	StreamEndFinished StreamEndReason = "finished"
	// StreamEndLoadFailed means the stream failed to load or broke mid-play.
	StreamEndLoadFailed StreamEndReason = "load_failed"
	// StreamEndStopped means the stream was stopped by a command.
	StreamEndStopped StreamEndReason = "stopped"
	// StreamEndReplaced means another stream took over the player.
	StreamEndReplaced StreamEndReason = "replaced"
	// StreamEndCleanup means the player was torn down.
	StreamEndCleanup StreamEndReason = "cleanup"
)

// ShouldAdvanceQueue returns true if this end reason should advance the queue.
func (r StreamEndReason) ShouldAdvanceQueue() bool {
	return r == StreamEndFinished || r == StreamEndLoadFailed
}

// StreamEndEvent is published by the audio transport when a stream ends.
type StreamEndEvent struct {
	GuildID snowflake.ID
	Reason  StreamEndReason
	Err     error
}

// QueueInitializedEvent is published when a new queue is created for a guild.
type QueueInitializedEvent struct {
	GuildID       snowflake.ID
	TextChannelID snowflake.ID
}

// SongAddedEvent is published when a single song is added to an existing queue.
type SongAddedEvent struct {
	GuildID       snowflake.ID
	TextChannelID snowflake.ID
	Song          *domain.Song
	// Position is the 1-based slot in the upcoming list the song landed at.
	Position int
}

// PlaylistAddedEvent is published when a playlist is added to an existing queue.
type PlaylistAddedEvent struct {
	GuildID       snowflake.ID
	TextChannelID snowflake.ID
	Playlist      *domain.Playlist
}

// SongStartedEvent is published when a song starts streaming.
type SongStartedEvent struct {
	GuildID       snowflake.ID
	TextChannelID snowflake.ID
	Song          *domain.Song
}

// SongFinishedEvent is published when a song finishes naturally and the
// queue moves on.
type SongFinishedEvent struct {
	GuildID       snowflake.ID
	TextChannelID snowflake.ID
	Song          *domain.Song
}

// QueueFinishedEvent is published when the last song ends and nothing is
// left to play.
type QueueFinishedEvent struct {
	GuildID       snowflake.ID
	TextChannelID snowflake.ID
}

// NoRelatedSongEvent is published when autoplay is on but no unplayed
// related song could be found.
type NoRelatedSongEvent struct {
	GuildID       snowflake.ID
	TextChannelID snowflake.ID
}

// VoiceChannelEmptyEvent is published when every listener has left the
// bot's voice channel.
type VoiceChannelEmptyEvent struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
}

// VoiceDisconnectedEvent is published when the voice connection drops,
// whether by command or externally.
type VoiceDisconnectedEvent struct {
	GuildID snowflake.ID
}

// QueueDeletedEvent is published when a guild's queue is removed.
type QueueDeletedEvent struct {
	GuildID snowflake.ID
}
