package events

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// stream carries one event type: a buffered channel, the registered
// handlers, and a dispatcher goroutine draining the channel into them.
type stream[T any] struct {
	name     string
	ch       chan T
	mu       sync.RWMutex
	handlers []func(context.Context, T)
}

func newStream[T any](name string, bufferSize int) *stream[T] {
	return &stream[T]{
		name: name,
		ch:   make(chan T, bufferSize),
	}
}

// publish is non-blocking: if the channel buffer is full, the event is
// dropped with a warning.
func (s *stream[T]) publish(event T) {
	select {
	case s.ch <- event:
		slog.Debug("published event", "type", s.name)
	default:
		slog.Warn("event buffer full, dropping event", "type", s.name)
	}
}

func (s *stream[T]) subscribe(handler func(context.Context, T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

func (s *stream[T]) dispatch(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.ch:
			if !ok {
				return
			}
			s.mu.RLock()
			handlers := s.handlers
			s.mu.RUnlock()
			for _, handler := range handlers {
				handler(ctx, event)
			}
		}
	}
}

// Bus provides a channel-based event bus for async event handling.
// Publishing never blocks the caller; handlers run on per-type
// dispatcher goroutines.
type Bus struct {
	streamEnd         *stream[StreamEndEvent]
	queueInitialized  *stream[QueueInitializedEvent]
	songAdded         *stream[SongAddedEvent]
	playlistAdded     *stream[PlaylistAddedEvent]
	songStarted       *stream[SongStartedEvent]
	songFinished      *stream[SongFinishedEvent]
	queueFinished     *stream[QueueFinishedEvent]
	noRelatedSong     *stream[NoRelatedSongEvent]
	voiceChannelEmpty *stream[VoiceChannelEmptyEvent]
	voiceDisconnected *stream[VoiceDisconnectedEvent]
	queueDeleted      *stream[QueueDeletedEvent]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewBus creates a new Bus with the given buffer size and starts its
// dispatchers.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	b := &Bus{
		streamEnd:         newStream[StreamEndEvent]("StreamEnd", bufferSize),
		queueInitialized:  newStream[QueueInitializedEvent]("QueueInitialized", bufferSize),
		songAdded:         newStream[SongAddedEvent]("SongAdded", bufferSize),
		playlistAdded:     newStream[PlaylistAddedEvent]("PlaylistAdded", bufferSize),
		songStarted:       newStream[SongStartedEvent]("SongStarted", bufferSize),
		songFinished:      newStream[SongFinishedEvent]("SongFinished", bufferSize),
		queueFinished:     newStream[QueueFinishedEvent]("QueueFinished", bufferSize),
		noRelatedSong:     newStream[NoRelatedSongEvent]("NoRelatedSong", bufferSize),
		voiceChannelEmpty: newStream[VoiceChannelEmptyEvent]("VoiceChannelEmpty", bufferSize),
		voiceDisconnected: newStream[VoiceDisconnectedEvent]("VoiceDisconnected", bufferSize),
		queueDeleted:      newStream[QueueDeletedEvent]("QueueDeleted", bufferSize),
		ctx:               ctx,
		cancel:            cancel,
	}

	b.wg.Add(11)
	go b.streamEnd.dispatch(ctx, &b.wg)
	go b.queueInitialized.dispatch(ctx, &b.wg)
	go b.songAdded.dispatch(ctx, &b.wg)
	go b.playlistAdded.dispatch(ctx, &b.wg)
	go b.songStarted.dispatch(ctx, &b.wg)
	go b.songFinished.dispatch(ctx, &b.wg)
	go b.queueFinished.dispatch(ctx, &b.wg)
	go b.noRelatedSong.dispatch(ctx, &b.wg)
	go b.voiceChannelEmpty.dispatch(ctx, &b.wg)
	go b.voiceDisconnected.dispatch(ctx, &b.wg)
	go b.queueDeleted.dispatch(ctx, &b.wg)

	return b
}

func publishOn[T any](b *Bus, s *stream[T], event T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", s.name)
		return
	}
	s.publish(event)
}

// PublishStreamEnd publishes a StreamEndEvent.
func (b *Bus) PublishStreamEnd(event StreamEndEvent) { publishOn(b, b.streamEnd, event) }

// PublishQueueInitialized publishes a QueueInitializedEvent.
func (b *Bus) PublishQueueInitialized(event QueueInitializedEvent) {
	publishOn(b, b.queueInitialized, event)
}

// PublishSongAdded publishes a SongAddedEvent.
func (b *Bus) PublishSongAdded(event SongAddedEvent) { publishOn(b, b.songAdded, event) }

// PublishPlaylistAdded publishes a PlaylistAddedEvent.
func (b *Bus) PublishPlaylistAdded(event PlaylistAddedEvent) { publishOn(b, b.playlistAdded, event) }

// PublishSongStarted publishes a SongStartedEvent.
func (b *Bus) PublishSongStarted(event SongStartedEvent) { publishOn(b, b.songStarted, event) }

// PublishSongFinished publishes a SongFinishedEvent.
func (b *Bus) PublishSongFinished(event SongFinishedEvent) { publishOn(b, b.songFinished, event) }

// PublishQueueFinished publishes a QueueFinishedEvent.
func (b *Bus) PublishQueueFinished(event QueueFinishedEvent) { publishOn(b, b.queueFinished, event) }

// PublishNoRelatedSong publishes a NoRelatedSongEvent.
func (b *Bus) PublishNoRelatedSong(event NoRelatedSongEvent) { publishOn(b, b.noRelatedSong, event) }

// PublishVoiceChannelEmpty publishes a VoiceChannelEmptyEvent.
func (b *Bus) PublishVoiceChannelEmpty(event VoiceChannelEmptyEvent) {
	publishOn(b, b.voiceChannelEmpty, event)
}

// PublishVoiceDisconnected publishes a VoiceDisconnectedEvent.
func (b *Bus) PublishVoiceDisconnected(event VoiceDisconnectedEvent) {
	publishOn(b, b.voiceDisconnected, event)
}

// PublishQueueDeleted publishes a QueueDeletedEvent.
func (b *Bus) PublishQueueDeleted(event QueueDeletedEvent) { publishOn(b, b.queueDeleted, event) }

// OnStreamEnd registers a handler for StreamEndEvent.
func (b *Bus) OnStreamEnd(handler func(context.Context, StreamEndEvent)) {
	b.streamEnd.subscribe(handler)
}

// OnQueueInitialized registers a handler for QueueInitializedEvent.
func (b *Bus) OnQueueInitialized(handler func(context.Context, QueueInitializedEvent)) {
	b.queueInitialized.subscribe(handler)
}

// OnSongAdded registers a handler for SongAddedEvent.
func (b *Bus) OnSongAdded(handler func(context.Context, SongAddedEvent)) {
	b.songAdded.subscribe(handler)
}

// OnPlaylistAdded registers a handler for PlaylistAddedEvent.
func (b *Bus) OnPlaylistAdded(handler func(context.Context, PlaylistAddedEvent)) {
	b.playlistAdded.subscribe(handler)
}

// OnSongStarted registers a handler for SongStartedEvent.
func (b *Bus) OnSongStarted(handler func(context.Context, SongStartedEvent)) {
	b.songStarted.subscribe(handler)
}

// OnSongFinished registers a handler for SongFinishedEvent.
func (b *Bus) OnSongFinished(handler func(context.Context, SongFinishedEvent)) {
	b.songFinished.subscribe(handler)
}

// OnQueueFinished registers a handler for QueueFinishedEvent.
func (b *Bus) OnQueueFinished(handler func(context.Context, QueueFinishedEvent)) {
	b.queueFinished.subscribe(handler)
}

// OnNoRelatedSong registers a handler for NoRelatedSongEvent.
func (b *Bus) OnNoRelatedSong(handler func(context.Context, NoRelatedSongEvent)) {
	b.noRelatedSong.subscribe(handler)
}

// OnVoiceChannelEmpty registers a handler for VoiceChannelEmptyEvent.
func (b *Bus) OnVoiceChannelEmpty(handler func(context.Context, VoiceChannelEmptyEvent)) {
	b.voiceChannelEmpty.subscribe(handler)
}

// OnVoiceDisconnected registers a handler for VoiceDisconnectedEvent.
func (b *Bus) OnVoiceDisconnected(handler func(context.Context, VoiceDisconnectedEvent)) {
	b.voiceDisconnected.subscribe(handler)
}

// OnQueueDeleted registers a handler for QueueDeletedEvent.
func (b *Bus) OnQueueDeleted(handler func(context.Context, QueueDeletedEvent)) {
	b.queueDeleted.subscribe(handler)
}

// Close stops the dispatchers and rejects further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()

	slog.Debug("event bus closed")
}
