package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/application/events"
	"github.com/sawakoto/canora/internal/modules/music_player/application/ports"
	"github.com/sawakoto/canora/internal/modules/music_player/application/voice"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	GuildID       snowflake.ID
	UserID        snowflake.ID
	UserName      string
	TextChannelID snowflake.ID
	Query         string
	// Position is the 1-based slot to insert at; 0 appends.
	Position int
	// Metadata is carried onto every resolved song.
	Metadata any
}

// PlayOutput contains the result of the Play use case.
type PlayOutput struct {
	Queue *domain.Queue
	// Created is true when this play request created the queue.
	Created bool
	// Position is the 1-based upcoming slot of the added song; 0 when the
	// request created the queue and playback started immediately.
	Position int
	Song     *domain.Song
	Playlist *domain.Playlist
}

// PlaybackOptions tunes what happens around stream lifecycle edges.
type PlaybackOptions struct {
	// LeaveOnStop disconnects from voice when playback is stopped by command.
	LeaveOnStop bool
	// LeaveOnFinish disconnects from voice when the queue runs out.
	LeaveOnFinish bool
}

// PlaybackService drives the play/advance/stop lifecycle of guild queues.
// Every mutating operation runs through the guild's task queue so that
// commands and stream-end events interleave one at a time.
type PlaybackService struct {
	queues     *QueueManager
	voices     *voice.Manager
	resolver   ports.SongResolver
	related    ports.RelatedProvider
	voiceState ports.VoiceStateProvider
	bus        *events.Bus
	opts       PlaybackOptions
}

// NewPlaybackService creates a new PlaybackService. related may be nil,
// which disables autoplay snapshots.
func NewPlaybackService(
	queues *QueueManager,
	voices *voice.Manager,
	resolver ports.SongResolver,
	related ports.RelatedProvider,
	voiceState ports.VoiceStateProvider,
	bus *events.Bus,
	opts PlaybackOptions,
) *PlaybackService {
	return &PlaybackService{
		queues:     queues,
		voices:     voices,
		resolver:   resolver,
		related:    related,
		voiceState: voiceState,
		bus:        bus,
		opts:       opts,
	}
}

// Play resolves the query and either seeds a new queue for the guild or
// appends to the existing one. The resolve runs as a resolve-class task:
// a concurrent play for the same guild waits behind it and then sees the
// queue it created.
func (p *PlaybackService) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	channelID, err := p.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("reading voice state: %w", err)
	}
	if channelID == nil {
		return nil, ErrUserNotInVoice
	}

	tasks := p.queues.GuildTasks(input.GuildID)
	if err := tasks.Queuing(ctx, true); err != nil {
		return nil, err
	}
	defer tasks.Resolve()

	result, err := p.resolver.Resolve(ctx, input.Query, ports.ResolveOptions{
		RequesterID:   input.UserID,
		RequesterName: input.UserName,
		Metadata:      input.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", input.Query, err)
	}

	var songs []*domain.Song
	switch {
	case result.Playlist != nil:
		songs = result.Playlist.Songs
	case result.Song != nil:
		songs = []*domain.Song{result.Song}
	}
	if len(songs) == 0 {
		return nil, ErrNoSongs
	}

	if _, err := p.voices.Join(ctx, input.GuildID, *channelID); err != nil {
		return nil, fmt.Errorf("joining voice: %w", err)
	}

	if queue, ok := p.queues.Get(input.GuildID); ok {
		position := queue.Enqueue(input.Position, songs...)
		if result.Playlist != nil {
			p.bus.PublishPlaylistAdded(events.PlaylistAddedEvent{
				GuildID:       input.GuildID,
				TextChannelID: queue.TextChannelID,
				Playlist:      result.Playlist,
			})
		} else {
			p.bus.PublishSongAdded(events.SongAddedEvent{
				GuildID:       input.GuildID,
				TextChannelID: queue.TextChannelID,
				Song:          songs[0],
				Position:      position,
			})
		}
		return &PlayOutput{
			Queue:    queue,
			Position: position,
			Song:     result.Song,
			Playlist: result.Playlist,
		}, nil
	}

	queue, err := p.queues.Create(input.GuildID, input.TextChannelID, songs)
	if err != nil {
		return nil, err
	}
	if result.Playlist != nil {
		p.bus.PublishPlaylistAdded(events.PlaylistAddedEvent{
			GuildID:       input.GuildID,
			TextChannelID: queue.TextChannelID,
			Playlist:      result.Playlist,
		})
	}
	if err := p.playSong(ctx, queue, queue.Current()); err != nil {
		p.queues.Delete(input.GuildID)
		return nil, err
	}
	return &PlayOutput{
		Queue:    queue,
		Created:  true,
		Song:     result.Song,
		Playlist: result.Playlist,
	}, nil
}

// playSong starts streaming the song on the guild's voice connection,
// applying the queue's volume and filters. The autoplay snapshot is
// filled the first time a song becomes current and never refreshed.
func (p *PlaybackService) playSong(ctx context.Context, queue *domain.Queue, song *domain.Song) error {
	v, ok := p.voices.Get(queue.GuildID)
	if !ok {
		return fmt.Errorf("%w: no voice connection for guild %d", domain.ErrInvalidState, queue.GuildID)
	}

	if song.Related == nil && p.related != nil {
		related, err := p.related.FindRelated(ctx, song)
		if err != nil {
			slog.Debug("fetching related songs failed", "guild", queue.GuildID, "error", err)
			related = []domain.RelatedSong{}
		}
		song.Related = related
	}

	queue.SetElapsed(0)
	err := v.Play(ctx, song, ports.PlayOptions{
		Volume:  queue.Volume(),
		Filters: queue.Filters(),
	})
	if err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}
	queue.SetState(domain.StatePlaying)

	p.bus.PublishSongStarted(events.SongStartedEvent{
		GuildID:       queue.GuildID,
		TextChannelID: queue.TextChannelID,
		Song:          song,
	})
	return nil
}

// HandleStreamEnd reacts to the transport reporting a stream end. Natural
// ends and load failures advance the queue; stop/replace/cleanup ends are
// already accounted for by the command that caused them.
func (p *PlaybackService) HandleStreamEnd(ctx context.Context, event events.StreamEndEvent) {
	if !event.Reason.ShouldAdvanceQueue() {
		return
	}
	queue, ok := p.queues.Get(event.GuildID)
	if !ok {
		return
	}
	if event.Err != nil {
		slog.Warn("stream ended with error", "guild", event.GuildID, "error", event.Err)
	}

	if err := queue.Tasks.Queuing(ctx, false); err != nil {
		return
	}
	defer queue.Tasks.Resolve()

	// A stop command may have raced this event.
	if queue.State() == domain.StateStopped {
		return
	}

	finished := queue.Current()

	// Autoplay has to look at the finished song's related snapshot, so it
	// runs before the queue advances away from it.
	aboutToExhaust := finished != nil &&
		len(queue.Upcoming()) == 0 &&
		queue.RepeatMode() == domain.RepeatModeDisabled
	if aboutToExhaust && queue.Autoplay() {
		if err := p.appendRelated(ctx, queue); err != nil {
			slog.Debug("autoplay found nothing", "guild", queue.GuildID, "error", err)
			p.bus.PublishNoRelatedSong(events.NoRelatedSongEvent{
				GuildID:       queue.GuildID,
				TextChannelID: queue.TextChannelID,
			})
		}
	}

	next := queue.AdvanceNatural()
	if finished != nil && next != finished {
		p.bus.PublishSongFinished(events.SongFinishedEvent{
			GuildID:       queue.GuildID,
			TextChannelID: queue.TextChannelID,
			Song:          finished,
		})
	}

	if next == nil {
		p.bus.PublishQueueFinished(events.QueueFinishedEvent{
			GuildID:       queue.GuildID,
			TextChannelID: queue.TextChannelID,
		})
		p.finish(ctx, queue, p.opts.LeaveOnFinish)
		return
	}

	if err := p.playSong(ctx, queue, next); err != nil {
		slog.Error("playing next song", "guild", queue.GuildID, "error", err)
		p.finish(ctx, queue, p.opts.LeaveOnFinish)
	}
}

// finish stops the queue, optionally leaves voice, and removes the queue
// from the manager.
func (p *PlaybackService) finish(ctx context.Context, queue *domain.Queue, leave bool) {
	queue.SetState(domain.StateStopped)
	if leave {
		if err := p.voices.Leave(ctx, queue.GuildID); err != nil {
			slog.Warn("leaving voice channel", "guild", queue.GuildID, "error", err)
		}
	}
	p.queues.Delete(queue.GuildID)
}

// appendRelated resolves the current song's next unplayed related song
// and appends it to the queue. The caller holds the task queue.
func (p *PlaybackService) appendRelated(ctx context.Context, queue *domain.Queue) error {
	related, err := queue.NextRelated()
	if err != nil {
		return err
	}

	current := queue.Current()
	opts := ports.ResolveOptions{}
	if current != nil {
		opts.RequesterID = current.RequesterID
		opts.RequesterName = current.RequesterName
	}

	result, err := p.resolver.Resolve(ctx, related.URL, opts)
	if err != nil {
		return fmt.Errorf("resolving related song %q: %w", related.URL, err)
	}
	if result.Song == nil {
		return ErrNoSongs
	}

	position := queue.Enqueue(0, result.Song)
	p.bus.PublishSongAdded(events.SongAddedEvent{
		GuildID:       queue.GuildID,
		TextChannelID: queue.TextChannelID,
		Song:          result.Song,
		Position:      position,
	})
	return nil
}

// AddRelatedSong appends the current song's next unplayed related song.
func (p *PlaybackService) AddRelatedSong(ctx context.Context, guildID snowflake.ID) error {
	queue, ok := p.queues.Get(guildID)
	if !ok {
		return ErrNoQueue
	}
	if err := queue.Tasks.Queuing(ctx, false); err != nil {
		return err
	}
	defer queue.Tasks.Resolve()

	return p.appendRelated(ctx, queue)
}

// Pause pauses the guild's playback.
func (p *PlaybackService) Pause(ctx context.Context, guildID snowflake.ID) error {
	queue, ok := p.queues.Get(guildID)
	if !ok {
		return ErrNoQueue
	}
	if queue.Current() == nil {
		return ErrNotPlaying
	}
	if queue.State() == domain.StatePaused {
		return ErrAlreadyPaused
	}

	if err := queue.Tasks.Queuing(ctx, false); err != nil {
		return err
	}
	defer queue.Tasks.Resolve()

	v, ok := p.voices.Get(guildID)
	if !ok {
		return fmt.Errorf("%w: no voice connection", domain.ErrInvalidState)
	}
	if err := v.Pause(ctx); err != nil {
		return err
	}
	queue.SetState(domain.StatePaused)
	return nil
}

// Resume resumes the guild's paused playback.
func (p *PlaybackService) Resume(ctx context.Context, guildID snowflake.ID) error {
	queue, ok := p.queues.Get(guildID)
	if !ok {
		return ErrNoQueue
	}
	if queue.State() != domain.StatePaused {
		return ErrNotPaused
	}

	if err := queue.Tasks.Queuing(ctx, false); err != nil {
		return err
	}
	defer queue.Tasks.Resolve()

	v, ok := p.voices.Get(guildID)
	if !ok {
		return fmt.Errorf("%w: no voice connection", domain.ErrInvalidState)
	}
	if err := v.Unpause(ctx); err != nil {
		return err
	}
	queue.SetState(domain.StatePlaying)
	return nil
}

// Stop halts the stream, deletes the queue, and leaves voice when
// configured. The queue is gone afterwards; a later play starts fresh.
func (p *PlaybackService) Stop(ctx context.Context, guildID snowflake.ID) error {
	queue, ok := p.queues.Get(guildID)
	if !ok {
		return ErrNoQueue
	}
	if err := queue.Tasks.Queuing(ctx, false); err != nil {
		return err
	}
	defer queue.Tasks.Resolve()

	queue.SetState(domain.StateStopped)
	if v, ok := p.voices.Get(guildID); ok {
		if err := v.Stop(ctx); err != nil {
			slog.Warn("stopping stream", "guild", guildID, "error", err)
		}
		if p.opts.LeaveOnStop {
			if err := p.voices.Leave(ctx, guildID); err != nil {
				slog.Warn("leaving voice channel", "guild", guildID, "error", err)
			}
		}
	}
	p.queues.Delete(guildID)
	return nil
}

// Skip moves to the next song, bypassing repeat-song mode for this call.
// When nothing follows, autoplay is given one chance to supply a related
// song; if it cannot, the skip fails and the current song keeps playing.
func (p *PlaybackService) Skip(ctx context.Context, guildID snowflake.ID) (*domain.Song, error) {
	queue, ok := p.queues.Get(guildID)
	if !ok {
		return nil, ErrNoQueue
	}
	if queue.Current() == nil {
		return nil, ErrNotPlaying
	}

	if err := queue.Tasks.Queuing(ctx, false); err != nil {
		return nil, err
	}
	defer queue.Tasks.Resolve()

	if len(queue.Upcoming()) == 0 && queue.RepeatMode() != domain.RepeatModeQueue {
		if !queue.Autoplay() {
			return nil, ErrNoUpNext
		}
		if err := p.appendRelated(ctx, queue); err != nil {
			return nil, fmt.Errorf("%w: autoplay found nothing", ErrNoUpNext)
		}
	}

	next := queue.AdvanceSkip()
	if next == nil {
		return nil, ErrNoUpNext
	}
	if err := p.playSong(ctx, queue, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Previous replays the most recent history entry.
func (p *PlaybackService) Previous(ctx context.Context, guildID snowflake.ID) (*domain.Song, error) {
	return p.Jump(ctx, guildID, -1)
}

// Jump moves to a relative queue position: positive offsets index the
// upcoming list, negative offsets the history. Out-of-range offsets fail
// without touching the queue.
func (p *PlaybackService) Jump(ctx context.Context, guildID snowflake.ID, offset int) (*domain.Song, error) {
	if offset == 0 {
		return nil, fmt.Errorf("%w: jump offset must not be zero", domain.ErrInvalidArgument)
	}
	queue, ok := p.queues.Get(guildID)
	if !ok {
		return nil, ErrNoQueue
	}

	if err := queue.Tasks.Queuing(ctx, false); err != nil {
		return nil, err
	}
	defer queue.Tasks.Resolve()

	song, err := queue.Jump(offset)
	if err != nil {
		return nil, err
	}
	if err := p.playSong(ctx, queue, song); err != nil {
		return nil, err
	}
	return song, nil
}

// Seek restarts the current stream at the given position, preserving
// volume and filters.
func (p *PlaybackService) Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error {
	queue, ok := p.queues.Get(guildID)
	if !ok {
		return ErrNoQueue
	}
	current := queue.Current()
	if current == nil {
		return ErrNotPlaying
	}
	if current.IsStream {
		return ErrSeekLive
	}
	if position < 0 || position > current.Duration {
		return ErrSeekOutOfRange
	}

	if err := queue.Tasks.Queuing(ctx, false); err != nil {
		return err
	}
	defer queue.Tasks.Resolve()

	v, ok := p.voices.Get(guildID)
	if !ok {
		return fmt.Errorf("%w: no voice connection", domain.ErrInvalidState)
	}
	if err := v.Seek(ctx, position); err != nil {
		return err
	}
	queue.SetElapsed(position)
	return nil
}

// PauseAll pauses every playing queue, e.g. before a shutdown.
func (p *PlaybackService) PauseAll(ctx context.Context) {
	for _, queue := range p.queues.All() {
		if err := p.Pause(ctx, queue.GuildID); err != nil {
			slog.Debug("pausing queue", "guild", queue.GuildID, "error", err)
		}
	}
}

// ResumeAll resumes every paused queue.
func (p *PlaybackService) ResumeAll(ctx context.Context) {
	for _, queue := range p.queues.All() {
		if err := p.Resume(ctx, queue.GuildID); err != nil {
			slog.Debug("resuming queue", "guild", queue.GuildID, "error", err)
		}
	}
}
