package domain

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// DefaultVolume is the volume percent a fresh queue starts with.
const DefaultVolume = 100

// PlaybackState is the lifecycle state of a queue.
type PlaybackState int

const (
	StatePlaying PlaybackState = iota
	StatePaused
	StateStopped
)

// String returns a human-readable representation of the playback state.
func (s PlaybackState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// QueueOptions configures history retention for a new queue.
type QueueOptions struct {
	HistoryEnabled bool
	// HistoryLimit bounds the history size; 0 means unbounded.
	HistoryLimit int
}

// Queue is the per-guild playback state: the current song, the upcoming
// list, an optional bounded history, and the playback settings.
//
// Multi-step operations are serialized through Tasks; the internal mutex
// only guards individual field accesses so that pure reads from other
// goroutines stay memory-safe.
type Queue struct {
	GuildID       snowflake.ID
	TextChannelID snowflake.ID

	// Tasks serializes every mutating operation on this queue.
	Tasks *TaskQueue

	mu       sync.RWMutex
	current  *Song
	upcoming []*Song
	history  []*Song
	opts     QueueOptions

	state    PlaybackState
	repeat   RepeatMode
	autoplay bool
	volume   int
	filters  FilterList
	elapsed  time.Duration
}

// NewQueue creates a queue for the given guild with the given songs.
// The first song becomes the current one; the queue starts playing.
func NewQueue(guildID, textChannelID snowflake.ID, songs []*Song, opts QueueOptions) *Queue {
	q := &Queue{
		GuildID:       guildID,
		TextChannelID: textChannelID,
		Tasks:         NewTaskQueue(),
		opts:          opts,
		state:         StatePlaying,
		volume:        DefaultVolume,
	}
	if len(songs) > 0 {
		q.current = songs[0]
		q.upcoming = append(q.upcoming, songs[1:]...)
	}
	return q
}

// Current returns the current song, or nil when the queue has finished.
func (q *Queue) Current() *Song {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.current
}

// Upcoming returns a copy of the upcoming songs.
func (q *Queue) Upcoming() []*Song {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]*Song, len(q.upcoming))
	copy(out, q.upcoming)
	return out
}

// History returns a copy of the previously played songs, oldest first.
func (q *Queue) History() []*Song {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]*Song, len(q.history))
	copy(out, q.history)
	return out
}

// IsEmpty reports whether the queue has neither a current nor upcoming songs.
func (q *Queue) IsEmpty() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.current == nil && len(q.upcoming) == 0
}

// State returns the playback state.
func (q *Queue) State() PlaybackState {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.state
}

// SetState transitions the playback state. Stopped is terminal: once a
// queue stops, later transitions are ignored.
func (q *Queue) SetState(s PlaybackState) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state == StateStopped {
		return
	}
	q.state = s
}

// RepeatMode returns the repeat mode.
func (q *Queue) RepeatMode() RepeatMode {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.repeat
}

// SetRepeatMode sets the repeat mode and returns it.
func (q *Queue) SetRepeatMode(m RepeatMode) RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.repeat = m
	return q.repeat
}

// CycleRepeatMode advances off -> song -> queue -> off and returns the
// resulting mode.
func (q *Queue) CycleRepeatMode() RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.repeat = q.repeat.Next()
	return q.repeat
}

// Autoplay reports whether autoplay is enabled.
func (q *Queue) Autoplay() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.autoplay
}

// ToggleAutoplay flips the autoplay flag and returns the new value.
func (q *Queue) ToggleAutoplay() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.autoplay = !q.autoplay
	return q.autoplay
}

// Volume returns the volume percent.
func (q *Queue) Volume() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.volume
}

// SetVolume stores the volume percent. Validation happens before the
// operation is enqueued; by the time this is called the value is legal.
func (q *Queue) SetVolume(percent int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.volume = percent
}

// Filters returns a copy of the active filter list.
func (q *Queue) Filters() FilterList {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.filters.Clone()
}

// SetFilters replaces the active filter list.
func (q *Queue) SetFilters(filters FilterList) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.filters = filters.Clone()
}

// Elapsed returns the playback position within the current song.
func (q *Queue) Elapsed() time.Duration {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.elapsed
}

// SetElapsed records the playback position within the current song.
func (q *Queue) SetElapsed(d time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.elapsed = d
}

// Enqueue inserts songs at the given 1-based position in the upcoming
// list; position <= 0 or past the end appends. Returns the 1-based
// position the first song landed at.
func (q *Queue) Enqueue(position int, songs ...*Song) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if position <= 0 || position > len(q.upcoming) {
		q.upcoming = append(q.upcoming, songs...)
		return len(q.upcoming) - len(songs) + 1
	}

	idx := position - 1
	rest := make([]*Song, len(q.upcoming[idx:]))
	copy(rest, q.upcoming[idx:])
	q.upcoming = append(q.upcoming[:idx], songs...)
	q.upcoming = append(q.upcoming, rest...)
	return position
}

// AdvanceNatural moves to the next song after a natural stream end,
// honoring the repeat mode. Returns the new current song, or nil when
// the queue is exhausted.
func (q *Queue) AdvanceNatural() *Song {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.advanceLocked(q.repeat)
}

// AdvanceSkip moves to the next song for an explicit skip. Repeat-song
// mode is bypassed for this call only; repeat-queue still rotates.
func (q *Queue) AdvanceSkip() *Song {
	q.mu.Lock()
	defer q.mu.Unlock()

	mode := q.repeat
	if mode == RepeatModeSong {
		mode = RepeatModeDisabled
	}
	return q.advanceLocked(mode)
}

func (q *Queue) advanceLocked(mode RepeatMode) *Song {
	if q.current == nil {
		if len(q.upcoming) == 0 {
			return nil
		}
		q.current = q.upcoming[0]
		q.upcoming = q.upcoming[1:]
		return q.current
	}

	switch mode {
	case RepeatModeSong:
		return q.current

	case RepeatModeQueue:
		q.pushHistoryLocked(q.current)
		q.upcoming = append(q.upcoming, q.current)
		q.current = q.upcoming[0]
		q.upcoming = q.upcoming[1:]
		return q.current

	default:
		q.pushHistoryLocked(q.current)
		if len(q.upcoming) == 0 {
			q.current = nil
			return nil
		}
		q.current = q.upcoming[0]
		q.upcoming = q.upcoming[1:]
		return q.current
	}
}

// Previous re-queues the most recent history entry as the current song.
// The interrupted current song moves to the front of the upcoming list.
func (q *Queue) Previous() (*Song, error) {
	return q.Jump(-1)
}

// Jump moves to a relative position in the combined history + upcoming
// sequence: positive indexes into upcoming songs, negative into history,
// zero is invalid. Skipped-over songs are preserved in playback order.
func (q *Queue) Jump(n int) (*Song, error) {
	if n == 0 {
		return nil, fmt.Errorf("%w: jump offset must not be zero", ErrInvalidArgument)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if n > 0 {
		if n > len(q.upcoming) {
			return nil, fmt.Errorf("%w: no song at position %d", ErrNotFound, n)
		}
		if q.current != nil {
			q.pushHistoryLocked(q.current)
		}
		for _, s := range q.upcoming[:n-1] {
			q.pushHistoryLocked(s)
		}
		q.current = q.upcoming[n-1]
		q.upcoming = q.upcoming[n:]
		return q.current, nil
	}

	if !q.opts.HistoryEnabled || len(q.history) == 0 {
		return nil, fmt.Errorf("%w: no previous song", ErrNotFound)
	}
	back := -n
	if back > len(q.history) {
		return nil, fmt.Errorf("%w: no song at position %d", ErrNotFound, n)
	}

	idx := len(q.history) - back
	target := q.history[idx]

	var front []*Song
	front = append(front, q.history[idx+1:]...)
	if q.current != nil {
		front = append(front, q.current)
	}
	q.upcoming = append(front, q.upcoming...)
	q.history = q.history[:idx]
	q.current = target
	return q.current, nil
}

// Shuffle randomizes the upcoming songs with a Fisher-Yates permutation.
// The current song and history are untouched.
func (q *Queue) Shuffle() {
	q.mu.Lock()
	defer q.mu.Unlock()

	rand.Shuffle(len(q.upcoming), func(i, j int) {
		q.upcoming[i], q.upcoming[j] = q.upcoming[j], q.upcoming[i]
	})
}

// NextRelated returns the first related song of the current song that has
// not been played yet (not the current song, not in history). Returns a
// source-exhausted error when the snapshot is empty or used up.
func (q *Queue) NextRelated() (RelatedSong, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.current == nil || len(q.current.Related) == 0 {
		return RelatedSong{}, fmt.Errorf("%w: no related songs", ErrSourceExhausted)
	}

	played := make(map[SongID]struct{}, len(q.history)+1)
	played[q.current.ID] = struct{}{}
	for _, s := range q.history {
		played[s.ID] = struct{}{}
	}

	for _, r := range q.current.Related {
		if _, ok := played[r.ID]; !ok {
			return r, nil
		}
	}
	return RelatedSong{}, fmt.Errorf("%w: all related songs already played", ErrSourceExhausted)
}

func (q *Queue) pushHistoryLocked(s *Song) {
	if !q.opts.HistoryEnabled {
		return
	}
	q.history = append(q.history, s)
	if q.opts.HistoryLimit > 0 && len(q.history) > q.opts.HistoryLimit {
		q.history = q.history[len(q.history)-q.opts.HistoryLimit:]
	}
}
