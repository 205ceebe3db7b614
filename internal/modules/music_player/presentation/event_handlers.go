package presentation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/application/events"
	"github.com/sawakoto/canora/internal/modules/music_player/application/ports"
	"github.com/sawakoto/canora/internal/modules/music_player/application/voice"
)

// nowPlayingMessage remembers where the last "Now Playing" embed went so
// it can be deleted when the song changes.
type nowPlayingMessage struct {
	channelID snowflake.ID
	messageID snowflake.ID
}

// NotificationEventHandler turns playback events into Discord messages.
type NotificationEventHandler struct {
	notifier ports.NotificationSender
	bus      *events.Bus

	mu         sync.Mutex
	nowPlaying map[snowflake.ID]nowPlayingMessage
}

// NewNotificationEventHandler creates a new NotificationEventHandler.
func NewNotificationEventHandler(
	notifier ports.NotificationSender,
	bus *events.Bus,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		notifier:   notifier,
		bus:        bus,
		nowPlaying: make(map[snowflake.ID]nowPlayingMessage),
	}
}

// Start registers event handlers with the bus.
func (h *NotificationEventHandler) Start() {
	h.bus.OnSongStarted(h.handleSongStarted)
	h.bus.OnSongAdded(h.handleSongAdded)
	h.bus.OnPlaylistAdded(h.handlePlaylistAdded)
	h.bus.OnQueueFinished(h.handleQueueFinished)
	h.bus.OnNoRelatedSong(h.handleNoRelatedSong)
	h.bus.OnQueueDeleted(h.handleQueueDeleted)

	slog.Debug("notification event handlers registered")
}

func (h *NotificationEventHandler) handleSongStarted(_ context.Context, event events.SongStartedEvent) {
	h.deleteNowPlaying(event.GuildID)

	messageID, err := h.notifier.SendNowPlaying(event.TextChannelID, event.Song)
	if err != nil {
		slog.Error("failed to send now playing notification",
			"guild", event.GuildID,
			"error", err,
		)
		return
	}

	h.mu.Lock()
	h.nowPlaying[event.GuildID] = nowPlayingMessage{
		channelID: event.TextChannelID,
		messageID: messageID,
	}
	h.mu.Unlock()
}

func (h *NotificationEventHandler) handleSongAdded(_ context.Context, event events.SongAddedEvent) {
	if err := h.notifier.SendSongQueued(event.TextChannelID, event.Song, event.Position); err != nil {
		slog.Warn("failed to send song queued notification",
			"guild", event.GuildID,
			"error", err,
		)
	}
}

func (h *NotificationEventHandler) handlePlaylistAdded(_ context.Context, event events.PlaylistAddedEvent) {
	if err := h.notifier.SendPlaylistQueued(event.TextChannelID, event.Playlist); err != nil {
		slog.Warn("failed to send playlist queued notification",
			"guild", event.GuildID,
			"error", err,
		)
	}
}

func (h *NotificationEventHandler) handleQueueFinished(_ context.Context, event events.QueueFinishedEvent) {
	h.deleteNowPlaying(event.GuildID)

	if err := h.notifier.SendInfo(event.TextChannelID, "Queue finished."); err != nil {
		slog.Warn("failed to send queue finished notification",
			"guild", event.GuildID,
			"error", err,
		)
	}
}

func (h *NotificationEventHandler) handleNoRelatedSong(_ context.Context, event events.NoRelatedSongEvent) {
	if err := h.notifier.SendError(event.TextChannelID, "Autoplay could not find a related song."); err != nil {
		slog.Warn("failed to send no related song notification",
			"guild", event.GuildID,
			"error", err,
		)
	}
}

func (h *NotificationEventHandler) handleQueueDeleted(_ context.Context, event events.QueueDeletedEvent) {
	h.deleteNowPlaying(event.GuildID)
}

func (h *NotificationEventHandler) deleteNowPlaying(guildID snowflake.ID) {
	h.mu.Lock()
	msg, ok := h.nowPlaying[guildID]
	if ok {
		delete(h.nowPlaying, guildID)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	if err := h.notifier.DeleteMessage(msg.channelID, msg.messageID); err != nil {
		slog.Warn("failed to delete now playing message",
			"guild", guildID,
			"message_id", msg.messageID,
			"error", err,
		)
	}
}

// EmptyChannelWatcher watches voice state updates and publishes
// VoiceChannelEmpty once the bot's channel has had no listeners for the
// cooldown period.
type EmptyChannelWatcher struct {
	voices     *voice.Manager
	voiceState ports.VoiceStateProvider
	bus        *events.Bus
	cooldown   time.Duration

	mu     sync.Mutex
	timers map[snowflake.ID]*time.Timer
}

// NewEmptyChannelWatcher creates a new EmptyChannelWatcher.
func NewEmptyChannelWatcher(
	voices *voice.Manager,
	voiceState ports.VoiceStateProvider,
	bus *events.Bus,
	cooldown time.Duration,
) *EmptyChannelWatcher {
	return &EmptyChannelWatcher{
		voices:     voices,
		voiceState: voiceState,
		bus:        bus,
		cooldown:   cooldown,
		timers:     make(map[snowflake.ID]*time.Timer),
	}
}

// HandleVoiceStateUpdate re-checks listener counts whenever anyone moves
// between voice channels in a guild the bot is connected to.
func (w *EmptyChannelWatcher) HandleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		return
	}

	v, ok := w.voices.Get(guildID)
	if !ok {
		return
	}
	channelID := v.ChannelID()
	if channelID == 0 {
		return
	}

	count, err := w.voiceState.ListenerCount(guildID, channelID)
	if err != nil {
		slog.Warn("failed to count listeners",
			"guild", guildID,
			"channel", channelID,
			"error", err,
		)
		return
	}

	if count > 0 {
		w.cancelTimer(guildID)
		return
	}
	w.scheduleTimer(guildID, channelID)
}

// Stop cancels all pending empty-channel timers.
func (w *EmptyChannelWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for guildID, timer := range w.timers {
		timer.Stop()
		delete(w.timers, guildID)
	}
}

func (w *EmptyChannelWatcher) scheduleTimer(guildID, channelID snowflake.ID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.timers[guildID]; ok {
		return
	}

	w.timers[guildID] = time.AfterFunc(w.cooldown, func() {
		w.mu.Lock()
		delete(w.timers, guildID)
		w.mu.Unlock()

		// Re-check in case someone joined right before the timer fired.
		count, err := w.voiceState.ListenerCount(guildID, channelID)
		if err != nil || count > 0 {
			return
		}

		slog.Debug("voice channel empty past cooldown",
			"guild", guildID,
			"channel", channelID,
		)
		w.bus.PublishVoiceChannelEmpty(events.VoiceChannelEmptyEvent{
			GuildID:   guildID,
			ChannelID: channelID,
		})
	})
}

func (w *EmptyChannelWatcher) cancelTimer(guildID snowflake.ID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[guildID]; ok {
		timer.Stop()
		delete(w.timers, guildID)
	}
}
