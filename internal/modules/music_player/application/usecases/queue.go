package usecases

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/application/voice"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// QueueSnapshot is a read-only view of a guild's queue for display.
type QueueSnapshot struct {
	Current    *domain.Song
	Upcoming   []*domain.Song
	History    []*domain.Song
	State      domain.PlaybackState
	RepeatMode domain.RepeatMode
	Autoplay   bool
	Volume     int
	Filters    domain.FilterList
	// Elapsed is the live stream position when available, otherwise the
	// last recorded position.
	Elapsed time.Duration
}

// QueueService handles queue inspection and settings.
type QueueService struct {
	queues *QueueManager
	voices *voice.Manager
}

// NewQueueService creates a new QueueService.
func NewQueueService(queues *QueueManager, voices *voice.Manager) *QueueService {
	return &QueueService{queues: queues, voices: voices}
}

// Snapshot returns a point-in-time view of the guild's queue.
func (s *QueueService) Snapshot(guildID snowflake.ID) (*QueueSnapshot, error) {
	queue, ok := s.queues.Get(guildID)
	if !ok {
		return nil, ErrNoQueue
	}

	elapsed := queue.Elapsed()
	if v, ok := s.voices.Get(guildID); ok {
		if position, err := v.Position(); err == nil {
			elapsed = position
		}
	}

	return &QueueSnapshot{
		Current:    queue.Current(),
		Upcoming:   queue.Upcoming(),
		History:    queue.History(),
		State:      queue.State(),
		RepeatMode: queue.RepeatMode(),
		Autoplay:   queue.Autoplay(),
		Volume:     queue.Volume(),
		Filters:    queue.Filters(),
		Elapsed:    elapsed,
	}, nil
}

// Shuffle randomizes the guild's upcoming songs.
func (s *QueueService) Shuffle(ctx context.Context, guildID snowflake.ID) error {
	queue, ok := s.queues.Get(guildID)
	if !ok {
		return ErrNoQueue
	}
	if err := queue.Tasks.Queuing(ctx, false); err != nil {
		return err
	}
	defer queue.Tasks.Resolve()

	queue.Shuffle()
	return nil
}

// SetVolume applies the volume percent to the queue and the live stream.
func (s *QueueService) SetVolume(ctx context.Context, guildID snowflake.ID, percent int) error {
	if percent <= 0 {
		return ErrInvalidVolume
	}
	queue, ok := s.queues.Get(guildID)
	if !ok {
		return ErrNoQueue
	}

	if err := queue.Tasks.Queuing(ctx, false); err != nil {
		return err
	}
	defer queue.Tasks.Resolve()

	queue.SetVolume(percent)
	if v, ok := s.voices.Get(guildID); ok {
		if err := v.SetVolume(ctx, percent); err != nil {
			return err
		}
	}
	return nil
}

// SetRepeatMode sets the repeat mode explicitly, or cycles to the next
// mode when mode is nil. Returns the resulting mode.
func (s *QueueService) SetRepeatMode(ctx context.Context, guildID snowflake.ID, mode *domain.RepeatMode) (domain.RepeatMode, error) {
	queue, ok := s.queues.Get(guildID)
	if !ok {
		return domain.RepeatModeDisabled, ErrNoQueue
	}

	if err := queue.Tasks.Queuing(ctx, false); err != nil {
		return domain.RepeatModeDisabled, err
	}
	defer queue.Tasks.Resolve()

	if mode == nil {
		return queue.CycleRepeatMode(), nil
	}
	return queue.SetRepeatMode(*mode), nil
}

// ToggleAutoplay flips the autoplay flag and returns the new value.
func (s *QueueService) ToggleAutoplay(ctx context.Context, guildID snowflake.ID) (bool, error) {
	queue, ok := s.queues.Get(guildID)
	if !ok {
		return false, ErrNoQueue
	}

	if err := queue.Tasks.Queuing(ctx, false); err != nil {
		return false, err
	}
	defer queue.Tasks.Resolve()

	return queue.ToggleAutoplay(), nil
}

// SetFilters replaces the queue's filter chain and rebuilds the live
// stream pipeline.
func (s *QueueService) SetFilters(ctx context.Context, guildID snowflake.ID, filters domain.FilterList) error {
	queue, ok := s.queues.Get(guildID)
	if !ok {
		return ErrNoQueue
	}

	if err := queue.Tasks.Queuing(ctx, false); err != nil {
		return err
	}
	defer queue.Tasks.Resolve()

	queue.SetFilters(filters)
	if v, ok := s.voices.Get(guildID); ok {
		if err := v.ApplyFilters(ctx, filters); err != nil {
			return err
		}
	}
	return nil
}
