package usecases

import (
	"fmt"

	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// Use case errors. Each wraps a domain error kind so handlers can
// classify failures with errors.Is.
var (
	// ErrNoQueue is returned when the guild has no active queue.
	ErrNoQueue = fmt.Errorf("%w: no queue for this guild", domain.ErrNotFound)

	// ErrQueueExists is returned when creating a queue for a guild that
	// already has one.
	ErrQueueExists = fmt.Errorf("%w: a queue already exists for this guild", domain.ErrInvalidState)

	// ErrUserNotInVoice is returned when the requesting user is not in a
	// voice channel.
	ErrUserNotInVoice = fmt.Errorf("%w: you must be in a voice channel", domain.ErrInvalidState)

	// ErrNotPlaying is returned when no song is currently playing.
	ErrNotPlaying = fmt.Errorf("%w: nothing is currently playing", domain.ErrInvalidState)

	// ErrAlreadyPaused is returned when pausing an already paused queue.
	ErrAlreadyPaused = fmt.Errorf("%w: playback is already paused", domain.ErrInvalidState)

	// ErrNotPaused is returned when resuming a queue that is not paused.
	ErrNotPaused = fmt.Errorf("%w: playback is not paused", domain.ErrInvalidState)

	// ErrNoUpNext is returned when skipping with nothing to skip to.
	ErrNoUpNext = fmt.Errorf("%w: no song to skip to", domain.ErrNotFound)

	// ErrNoSongs is returned when a resolve yields no playable songs.
	ErrNoSongs = fmt.Errorf("%w: no playable songs", domain.ErrEmptyCollection)

	// ErrInvalidVolume is returned for volume percents at or below zero.
	ErrInvalidVolume = fmt.Errorf("%w: volume must be greater than 0", domain.ErrInvalidArgument)

	// ErrSeekLive is returned when seeking a live stream.
	ErrSeekLive = fmt.Errorf("%w: cannot seek a live stream", domain.ErrInvalidArgument)

	// ErrSeekOutOfRange is returned for seek positions outside the song.
	ErrSeekOutOfRange = fmt.Errorf("%w: seek position out of range", domain.ErrInvalidArgument)
)
