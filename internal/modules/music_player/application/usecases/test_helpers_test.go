package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/application/events"
	"github.com/sawakoto/canora/internal/modules/music_player/application/ports"
	"github.com/sawakoto/canora/internal/modules/music_player/application/voice"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

const (
	testGuildID   = snowflake.ID(100)
	testChannelID = snowflake.ID(200)
	testTextID    = snowflake.ID(300)
	testUserID    = snowflake.ID(400)
)

// mockResolver returns canned results keyed by query.
type mockResolver struct {
	mu      sync.Mutex
	results map[string]*ports.ResolveResult
	err     error
	// delay simulates a slow upstream resolve.
	delay time.Duration
	calls []string
}

func (r *mockResolver) Resolve(ctx context.Context, query string, opts ports.ResolveOptions) (*ports.ResolveResult, error) {
	r.mu.Lock()
	r.calls = append(r.calls, query)
	delay := r.delay
	r.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if result, ok := r.results[query]; ok {
		if result.Song != nil {
			result.Song.StampRequester(opts.RequesterID, opts.RequesterName, opts.Metadata)
		}
		return result, nil
	}
	return nil, ErrNoSongs
}

func (r *mockResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type mockRelated struct {
	related []domain.RelatedSong
	err     error
}

func (m *mockRelated) FindRelated(_ context.Context, _ *domain.Song) ([]domain.RelatedSong, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.related, nil
}

type mockVoiceState struct {
	mu       sync.Mutex
	channels map[snowflake.ID]snowflake.ID // user -> channel
	counts   map[snowflake.ID]int          // channel -> listeners
}

func (m *mockVoiceState) GetUserVoiceChannel(_, userID snowflake.ID) (*snowflake.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if channelID, ok := m.channels[userID]; ok {
		return &channelID, nil
	}
	return nil, nil
}

func (m *mockVoiceState) ListenerCount(_, channelID snowflake.ID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[channelID], nil
}

type mockGateway struct {
	mu         sync.Mutex
	joinCalls  int
	leaveCalls int
}

func (g *mockGateway) JoinChannel(_ context.Context, _, _ snowflake.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.joinCalls++
	return nil
}

func (g *mockGateway) LeaveChannel(_ context.Context, _ snowflake.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.leaveCalls++
	return nil
}

type mockStream struct {
	mu          sync.Mutex
	played      []*domain.Song
	playErr     error
	stopCalls   int
	pauseCalls  int
	resumeCalls int
	volume      int
	position    time.Duration
	filters     domain.FilterList
}

func (s *mockStream) Play(_ context.Context, _ snowflake.ID, song *domain.Song, opts ports.PlayOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playErr != nil {
		return s.playErr
	}
	s.played = append(s.played, song)
	s.volume = opts.Volume
	s.filters = opts.Filters
	return nil
}

func (s *mockStream) Stop(_ context.Context, _ snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCalls++
	return nil
}

func (s *mockStream) Pause(_ context.Context, _ snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseCalls++
	return nil
}

func (s *mockStream) Resume(_ context.Context, _ snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumeCalls++
	return nil
}

func (s *mockStream) SetVolume(_ context.Context, _ snowflake.ID, percent int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = percent
	return nil
}

func (s *mockStream) ApplyFilters(_ context.Context, _ snowflake.ID, filters domain.FilterList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filters
	return nil
}

func (s *mockStream) Seek(_ context.Context, _ snowflake.ID, position time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = position
	return nil
}

func (s *mockStream) Position(_ snowflake.ID) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position, nil
}

func (s *mockStream) playedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.played)
}

func (s *mockStream) lastPlayed() *domain.Song {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.played) == 0 {
		return nil
	}
	return s.played[len(s.played)-1]
}

// fixture bundles the services with their mocks for playback tests.
type fixture struct {
	playback   *PlaybackService
	queueSvc   *QueueService
	manager    *QueueManager
	bus        *events.Bus
	resolver   *mockResolver
	related    *mockRelated
	voiceState *mockVoiceState
	gateway    *mockGateway
	stream     *mockStream
}

func newFixture(opts PlaybackOptions) *fixture {
	bus := events.NewBus(16)
	manager := NewQueueManager(bus, domain.QueueOptions{HistoryEnabled: true}, 0)
	gateway := &mockGateway{}
	stream := &mockStream{}
	voices := voice.NewManager(gateway, stream, true)
	resolver := &mockResolver{results: make(map[string]*ports.ResolveResult)}
	related := &mockRelated{}
	voiceState := &mockVoiceState{
		channels: map[snowflake.ID]snowflake.ID{testUserID: testChannelID},
		counts:   make(map[snowflake.ID]int),
	}

	return &fixture{
		playback:   NewPlaybackService(manager, voices, resolver, related, voiceState, bus, opts),
		queueSvc:   NewQueueService(manager, voices),
		manager:    manager,
		bus:        bus,
		resolver:   resolver,
		related:    related,
		voiceState: voiceState,
		gateway:    gateway,
		stream:     stream,
	}
}

func (f *fixture) close() {
	f.bus.Close()
}

func (f *fixture) addResult(query string, song *domain.Song) {
	f.resolver.results[query] = &ports.ResolveResult{Song: song}
}

func (f *fixture) addPlaylist(query string, playlist *domain.Playlist) {
	f.resolver.results[query] = &ports.ResolveResult{Playlist: playlist}
}

func (f *fixture) play(ctx context.Context, query string) (*PlayOutput, error) {
	return f.playback.Play(ctx, PlayInput{
		GuildID:       testGuildID,
		UserID:        testUserID,
		UserName:      "tester",
		TextChannelID: testTextID,
		Query:         query,
	})
}

func song(id string) *domain.Song {
	return &domain.Song{
		ID:       domain.SongID(id),
		URL:      "https://example.com/" + id,
		Title:    id,
		Duration: 3 * time.Minute,
	}
}
