package ports

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// PlayOptions tunes how a stream is started.
type PlayOptions struct {
	// StartAt is the position to begin playback from; zero plays from the start.
	StartAt time.Duration
	// Volume is the volume percent to apply before the stream starts.
	Volume int
	// Filters is the filter chain to rebuild the pipeline with.
	Filters domain.FilterList
}

// StreamPlayer defines the interface for audio stream operations.
type StreamPlayer interface {
	// Play starts streaming the given song. A running stream for the same
	// guild is replaced without emitting a finish event.
	Play(ctx context.Context, guildID snowflake.ID, song *domain.Song, opts PlayOptions) error

	// Stop ends the current stream without a finish event.
	Stop(ctx context.Context, guildID snowflake.ID) error

	// Pause pauses the current stream.
	Pause(ctx context.Context, guildID snowflake.ID) error

	// Resume resumes the paused stream.
	Resume(ctx context.Context, guildID snowflake.ID) error

	// SetVolume applies the volume percent to the running stream.
	SetVolume(ctx context.Context, guildID snowflake.ID, percent int) error

	// ApplyFilters rebuilds the stream pipeline with the given filter chain.
	ApplyFilters(ctx context.Context, guildID snowflake.ID, filters domain.FilterList) error

	// Seek moves playback of the current stream to the given position.
	Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error

	// Position returns the playback position of the current stream.
	Position(guildID snowflake.ID) (time.Duration, error)
}
