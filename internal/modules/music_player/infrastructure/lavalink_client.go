package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/application/events"
	"github.com/sawakoto/canora/internal/modules/music_player/application/ports"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// voiceConnectionTimeout is the maximum time to wait for a voice
// connection to be established.
const voiceConnectionTimeout = 10 * time.Second

// pendingVoiceConnection tracks a join waiting for the gateway to confirm.
type pendingVoiceConnection struct {
	mu             sync.Mutex
	hasVoiceState  bool
	hasVoiceServer bool
	ready          chan struct{}
}

func (p *pendingVoiceConnection) onEvent(isVoiceState bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if isVoiceState {
		p.hasVoiceState = true
	} else {
		p.hasVoiceServer = true
	}

	if p.hasVoiceState && p.hasVoiceServer {
		select {
		case <-p.ready:
		default:
			close(p.ready)
		}
	}
}

// voiceEventBuffer holds voice gateway events until both VoiceStateUpdate
// and VoiceServerUpdate have arrived. Lavalink rejects partial voice
// state, and Discord delivers the two events in either order.
type voiceEventBuffer struct {
	mu sync.Mutex

	hasVoiceState bool
	channelID     *snowflake.ID
	sessionID     string

	hasVoiceServer bool
	token          string
	endpoint       string
}

func (b *voiceEventBuffer) setVoiceState(channelID *snowflake.ID, sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceState = true
	b.channelID = channelID
	b.sessionID = sessionID

	return b.hasVoiceState && b.hasVoiceServer
}

func (b *voiceEventBuffer) setVoiceServer(token, endpoint string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceServer = true
	b.token = token
	b.endpoint = endpoint

	return b.hasVoiceState && b.hasVoiceServer
}

// take returns the buffered data and resets the buffer.
func (b *voiceEventBuffer) take() (channelID *snowflake.ID, sessionID, token, endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	channelID = b.channelID
	sessionID = b.sessionID
	token = b.token
	endpoint = b.endpoint

	b.hasVoiceState = false
	b.hasVoiceServer = false
	b.channelID = nil
	b.sessionID = ""
	b.token = ""
	b.endpoint = ""

	return
}

// LavalinkConfig contains Lavalink node connection configuration.
type LavalinkConfig struct {
	Address  string
	Password string
	Secure   bool
}

// LavalinkAdapter wraps DisGoLink into the voice gateway, stream player,
// and song resolver ports. Stream lifecycle events from the node are
// normalized onto the event bus.
type LavalinkAdapter struct {
	link    disgolink.Client
	session *discordgo.Session
	botID   snowflake.ID
	bus     *events.Bus

	pendingMu sync.Mutex
	pending   map[snowflake.ID]*pendingVoiceConnection

	voiceBufferMu sync.Mutex
	voiceBuffers  map[snowflake.ID]*voiceEventBuffer
}

// NewLavalinkAdapter creates the adapter and connects it to the node.
func NewLavalinkAdapter(
	session *discordgo.Session,
	config LavalinkConfig,
	bus *events.Bus,
) (*LavalinkAdapter, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing bot ID: %w", err)
	}

	adapter := &LavalinkAdapter{
		session:      session,
		botID:        botID,
		bus:          bus,
		pending:      make(map[snowflake.ID]*pendingVoiceConnection),
		voiceBuffers: make(map[snowflake.ID]*voiceEventBuffer),
	}

	link := disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
	)
	adapter.link = link

	node, err := link.AddNode(context.Background(), disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   config.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("adding Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return adapter, nil
}

// Close shuts down the node connection and every player it manages.
func (c *LavalinkAdapter) Close() {
	c.link.Close()
}

// JoinChannel connects to a voice channel. It waits until the gateway has
// delivered both VoiceStateUpdate and VoiceServerUpdate.
func (c *LavalinkAdapter) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	pending := &pendingVoiceConnection{ready: make(chan struct{})}

	c.pendingMu.Lock()
	c.pending[guildID] = pending
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, guildID)
		c.pendingMu.Unlock()
	}()

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, false)
	if err != nil {
		return fmt.Errorf("joining voice channel: %w", err)
	}

	select {
	case <-pending.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for voice connection: %w", ctx.Err())
	case <-time.After(voiceConnectionTimeout):
		return fmt.Errorf("%w: timeout waiting for voice connection", domain.ErrUpstream)
	}
}

// LeaveChannel destroys the guild's player and disconnects from voice.
func (c *LavalinkAdapter) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	if player := c.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("destroying player", "guild", guildID, "error", err)
		}
	}

	if err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, false); err != nil {
		return fmt.Errorf("leaving voice channel: %w", err)
	}
	return nil
}

// Play starts streaming the song, applying the requested volume, filters,
// and start position in one player update.
func (c *LavalinkAdapter) Play(ctx context.Context, guildID snowflake.ID, song *domain.Song, opts ports.PlayOptions) error {
	encoded := song.Encoded
	if encoded == "" {
		loaded, err := c.loadSingle(ctx, song.URL)
		if err != nil {
			return fmt.Errorf("loading track for %q: %w", song.URL, err)
		}
		encoded = loaded.Encoded
		song.Encoded = encoded
	}

	player := c.link.Player(guildID)
	updates := []lavalink.PlayerUpdateOpt{
		lavalink.WithEncodedTrack(encoded),
		lavalink.WithPaused(false),
	}
	if opts.Volume > 0 {
		updates = append(updates, lavalink.WithVolume(opts.Volume))
	}
	if len(opts.Filters) > 0 {
		updates = append(updates, lavalink.WithFilters(buildFilters(opts.Filters)))
	}
	if opts.StartAt > 0 {
		updates = append(updates, lavalink.WithPosition(lavalink.Duration(opts.StartAt.Milliseconds())))
	}

	if err := player.Update(ctx, updates...); err != nil {
		return fmt.Errorf("%w: starting stream: %v", domain.ErrUpstream, err)
	}
	return nil
}

// Stop ends the current stream.
func (c *LavalinkAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("%w: stopping stream: %v", domain.ErrUpstream, err)
	}
	return nil
}

// Pause pauses the current stream.
func (c *LavalinkAdapter) Pause(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithPaused(true)); err != nil {
		return fmt.Errorf("%w: pausing stream: %v", domain.ErrUpstream, err)
	}
	return nil
}

// Resume resumes the paused stream.
func (c *LavalinkAdapter) Resume(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithPaused(false)); err != nil {
		return fmt.Errorf("%w: resuming stream: %v", domain.ErrUpstream, err)
	}
	return nil
}

// SetVolume applies the volume percent to the running stream.
func (c *LavalinkAdapter) SetVolume(ctx context.Context, guildID snowflake.ID, percent int) error {
	player := c.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithVolume(percent)); err != nil {
		return fmt.Errorf("%w: setting volume: %v", domain.ErrUpstream, err)
	}
	return nil
}

// ApplyFilters rebuilds the stream pipeline; playback position is kept.
func (c *LavalinkAdapter) ApplyFilters(ctx context.Context, guildID snowflake.ID, filters domain.FilterList) error {
	player := c.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithFilters(buildFilters(filters))); err != nil {
		return fmt.Errorf("%w: applying filters: %v", domain.ErrUpstream, err)
	}
	return nil
}

// Seek moves the current stream to the given position.
func (c *LavalinkAdapter) Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error {
	player := c.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithPosition(lavalink.Duration(position.Milliseconds()))); err != nil {
		return fmt.Errorf("%w: seeking: %v", domain.ErrUpstream, err)
	}
	return nil
}

// Position returns the playback position of the guild's stream.
func (c *LavalinkAdapter) Position(guildID snowflake.ID) (time.Duration, error) {
	player := c.link.ExistingPlayer(guildID)
	if player == nil {
		return 0, fmt.Errorf("%w: no player for guild %d", domain.ErrNotFound, guildID)
	}
	return time.Duration(player.Position().Milliseconds()) * time.Millisecond, nil
}

// Resolve loads the songs behind a URL or search query. Non-URL queries
// go through the node's search provider and resolve to the best match.
func (c *LavalinkAdapter) Resolve(ctx context.Context, query string, opts ports.ResolveOptions) (*ports.ResolveResult, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, fmt.Errorf("%w: no available Lavalink node", domain.ErrUpstream)
	}

	if !isURL(query) {
		query = "ytsearch:" + query
	}

	result, err := node.LoadTracks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: loading tracks: %v", domain.ErrUpstream, err)
	}

	switch data := result.Data.(type) {
	case lavalink.Track:
		song := c.convertTrack(data, opts)
		return &ports.ResolveResult{Song: song}, nil

	case lavalink.Playlist:
		if len(data.Tracks) == 0 {
			return nil, fmt.Errorf("%w: playlist has no tracks", domain.ErrEmptyCollection)
		}
		songs := make([]*domain.Song, len(data.Tracks))
		for i, track := range data.Tracks {
			songs[i] = c.convertTrack(track, opts)
		}
		return &ports.ResolveResult{Playlist: &domain.Playlist{
			Name:          data.Info.Name,
			Source:        songs[0].Source,
			Songs:         songs,
			RequesterID:   opts.RequesterID,
			RequesterName: opts.RequesterName,
		}}, nil

	case lavalink.Search:
		if len(data) == 0 {
			return nil, fmt.Errorf("%w: no results for %q", domain.ErrNotFound, query)
		}
		song := c.convertTrack(data[0], opts)
		return &ports.ResolveResult{Song: song}, nil

	case lavalink.Empty:
		return nil, fmt.Errorf("%w: no results for %q", domain.ErrNotFound, query)

	case lavalink.Exception:
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, data.Message)

	default:
		return nil, fmt.Errorf("%w: no results for %q", domain.ErrNotFound, query)
	}
}

// loadSingle resolves a URL to exactly one track.
func (c *LavalinkAdapter) loadSingle(ctx context.Context, url string) (*lavalink.Track, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, fmt.Errorf("%w: no available Lavalink node", domain.ErrUpstream)
	}

	result, err := node.LoadTracks(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: loading track: %v", domain.ErrUpstream, err)
	}

	switch data := result.Data.(type) {
	case lavalink.Track:
		return &data, nil
	case lavalink.Search:
		if len(data) > 0 {
			return &data[0], nil
		}
	case lavalink.Playlist:
		if len(data.Tracks) > 0 {
			track := data.Tracks[0]
			return &track, nil
		}
	}
	return nil, fmt.Errorf("%w: no track behind %q", domain.ErrNotFound, url)
}

func (c *LavalinkAdapter) convertTrack(track lavalink.Track, opts ports.ResolveOptions) *domain.Song {
	info := track.Info

	thumbnail := ""
	if info.ArtworkURL != nil {
		thumbnail = *info.ArtworkURL
	}
	url := ""
	if info.URI != nil {
		url = *info.URI
	}

	song := &domain.Song{
		ID:        domain.SongID(info.Identifier),
		URL:       url,
		Title:     info.Title,
		Uploader:  info.Author,
		Duration:  time.Duration(info.Length) * time.Millisecond,
		IsStream:  info.IsStream,
		Thumbnail: thumbnail,
		Source:    info.SourceName,
		Encoded:   track.Encoded,
	}
	song.StampRequester(opts.RequesterID, opts.RequesterName, opts.Metadata)
	return song
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// OnVoiceServerUpdate handles Discord voice server updates. Must be
// registered on the Discord session.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("parsing guild ID in voice server update", "error", err)
		return
	}

	buffer := c.getOrCreateVoiceBuffer(guildID)
	if buffer.setVoiceServer(event.Token, event.Endpoint) {
		c.forwardBufferedVoiceEvents(guildID, buffer)
	}

	c.pendingMu.Lock()
	pending := c.pending[guildID]
	c.pendingMu.Unlock()
	if pending != nil {
		pending.onEvent(false)
	}
}

// OnVoiceStateUpdate handles Discord voice state updates for the bot
// itself. Must be registered on the Discord session.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("parsing guild ID in voice state update", "error", err)
		return
	}

	var channelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("parsing channel ID in voice state update", "error", err)
			return
		}
		channelID = &id
	}

	// An empty channel means the bot left or was disconnected.
	if channelID == nil {
		c.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		c.clearVoiceBuffer(guildID)
		c.bus.PublishVoiceDisconnected(events.VoiceDisconnectedEvent{GuildID: guildID})
		return
	}

	buffer := c.getOrCreateVoiceBuffer(guildID)
	if buffer.setVoiceState(channelID, event.SessionID) {
		c.forwardBufferedVoiceEvents(guildID, buffer)
	}

	c.pendingMu.Lock()
	pending := c.pending[guildID]
	c.pendingMu.Unlock()
	if pending != nil {
		pending.onEvent(true)
	}
}

func (c *LavalinkAdapter) getOrCreateVoiceBuffer(guildID snowflake.ID) *voiceEventBuffer {
	c.voiceBufferMu.Lock()
	defer c.voiceBufferMu.Unlock()

	buffer, exists := c.voiceBuffers[guildID]
	if !exists {
		buffer = &voiceEventBuffer{}
		c.voiceBuffers[guildID] = buffer
	}
	return buffer
}

func (c *LavalinkAdapter) clearVoiceBuffer(guildID snowflake.ID) {
	c.voiceBufferMu.Lock()
	defer c.voiceBufferMu.Unlock()
	delete(c.voiceBuffers, guildID)
}

func (c *LavalinkAdapter) forwardBufferedVoiceEvents(guildID snowflake.ID, buffer *voiceEventBuffer) {
	channelID, sessionID, token, endpoint := buffer.take()

	slog.Debug("forwarding buffered voice events to Lavalink",
		"guild", guildID,
		"channel", channelID,
	)

	c.link.OnVoiceStateUpdate(context.Background(), guildID, channelID, sessionID)
	c.link.OnVoiceServerUpdate(context.Background(), guildID, token, endpoint)
}

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("stream started", "guild", player.GuildID(), "track", event.Track.Info.Title)
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("stream ended", "guild", player.GuildID(), "reason", event.Reason)

	c.bus.PublishStreamEnd(events.StreamEndEvent{
		GuildID: player.GuildID(),
		Reason:  convertEndReason(event.Reason),
	})
}

func (c *LavalinkAdapter) onTrackException(player disgolink.Player, event lavalink.TrackExceptionEvent) {
	// Lavalink follows an exception with a load-failed TrackEndEvent, so
	// advancing happens there.
	slog.Warn("stream exception", "guild", player.GuildID(), "error", event.Exception.Message)
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("stream stuck", "guild", player.GuildID(), "threshold", event.Threshold)
}

func convertEndReason(reason lavalink.TrackEndReason) events.StreamEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return events.StreamEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return events.StreamEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return events.StreamEndStopped
	case lavalink.TrackEndReasonReplaced:
		return events.StreamEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return events.StreamEndCleanup
	default:
		return events.StreamEndStopped
	}
}

// Ensure LavalinkAdapter implements the port interfaces.
var (
	_ ports.VoiceGateway = (*LavalinkAdapter)(nil)
	_ ports.StreamPlayer = (*LavalinkAdapter)(nil)
	_ ports.SongResolver = (*LavalinkAdapter)(nil)
)
