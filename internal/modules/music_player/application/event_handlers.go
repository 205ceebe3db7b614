package application

import (
	"context"
	"log/slog"

	"github.com/sawakoto/canora/internal/modules/music_player/application/events"
	"github.com/sawakoto/canora/internal/modules/music_player/application/usecases"
	"github.com/sawakoto/canora/internal/modules/music_player/application/voice"
)

// PlaybackEventHandler wires transport events into the playback services.
// It subscribes to StreamEnd to drive queue advancement and to
// VoiceDisconnected to tear down playback when the voice connection drops.
type PlaybackEventHandler struct {
	playback *usecases.PlaybackService
	queues   *usecases.QueueManager
	voices   *voice.Manager
	bus      *events.Bus
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	playback *usecases.PlaybackService,
	queues *usecases.QueueManager,
	voices *voice.Manager,
	bus *events.Bus,
) *PlaybackEventHandler {
	return &PlaybackEventHandler{
		playback: playback,
		queues:   queues,
		voices:   voices,
		bus:      bus,
	}
}

// Start registers event handlers with the bus.
func (h *PlaybackEventHandler) Start() {
	h.bus.OnStreamEnd(func(ctx context.Context, event events.StreamEndEvent) {
		h.playback.HandleStreamEnd(ctx, event)
	})

	h.bus.OnVoiceDisconnected(h.handleVoiceDisconnected)
	h.bus.OnVoiceChannelEmpty(h.handleVoiceChannelEmpty)

	slog.Debug("playback event handlers registered")
}

func (h *PlaybackEventHandler) handleVoiceChannelEmpty(
	ctx context.Context,
	event events.VoiceChannelEmptyEvent,
) {
	slog.Debug("leaving empty voice channel", "guild", event.GuildID, "channel", event.ChannelID)

	if err := h.voices.Leave(ctx, event.GuildID); err != nil {
		slog.Warn("failed to leave empty voice channel",
			"guild", event.GuildID,
			"error", err,
		)
	}

	h.queues.Delete(event.GuildID)
}

func (h *PlaybackEventHandler) handleVoiceDisconnected(
	_ context.Context,
	event events.VoiceDisconnectedEvent,
) {
	slog.Debug("voice disconnected, tearing down playback", "guild", event.GuildID)

	h.voices.HandleDisconnect(event.GuildID)

	if h.queues.Delete(event.GuildID) {
		slog.Debug("queue deleted after voice disconnect", "guild", event.GuildID)
	}
}
