package music_player

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/sawakoto/canora/internal/bot"
	"github.com/sawakoto/canora/internal/modules/music_player/application"
	"github.com/sawakoto/canora/internal/modules/music_player/application/events"
	"github.com/sawakoto/canora/internal/modules/music_player/application/ports"
	"github.com/sawakoto/canora/internal/modules/music_player/application/usecases"
	"github.com/sawakoto/canora/internal/modules/music_player/application/voice"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
	"github.com/sawakoto/canora/internal/modules/music_player/infrastructure"
	"github.com/sawakoto/canora/internal/modules/music_player/presentation"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *presentation.CommandHandlers
	lavalinkAdapter *infrastructure.LavalinkAdapter

	// Event-driven components
	eventBus            *events.Bus
	playbackHandler     *application.PlaybackEventHandler
	notificationHandler *presentation.NotificationEventHandler
	emptyWatcher        *presentation.EmptyChannelWatcher
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"join":       m.commandHandlers.HandleJoin,
		"leave":      m.commandHandlers.HandleLeave,
		"play":       m.commandHandlers.HandlePlay,
		"stop":       m.commandHandlers.HandleStop,
		"pause":      m.commandHandlers.HandlePause,
		"resume":     m.commandHandlers.HandleResume,
		"skip":       m.commandHandlers.HandleSkip,
		"previous":   m.commandHandlers.HandlePrevious,
		"jump":       m.commandHandlers.HandleJump,
		"seek":       m.commandHandlers.HandleSeek,
		"volume":     m.commandHandlers.HandleVolume,
		"shuffle":    m.commandHandlers.HandleShuffle,
		"loop":       m.commandHandlers.HandleLoop,
		"autoplay":   m.commandHandlers.HandleAutoplay,
		"filter":     m.commandHandlers.HandleFilter,
		"queue":      m.commandHandlers.HandleQueue,
		"nowplaying": m.commandHandlers.HandleNowPlaying,
	}
}

// EventHandlers returns the Discord gateway handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return fmt.Errorf("music_player module requires a Discord session")
	}
	session := deps.Session

	m.eventBus = events.NewBus(m.config.EventBufferSize)

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(session, infrastructure.LavalinkConfig{
		Address:  m.config.LavalinkAddress,
		Password: m.config.LavalinkPassword,
		Secure:   m.config.LavalinkSecure,
	}, m.eventBus)
	if err != nil {
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	voiceState := infrastructure.NewVoiceStateProvider(session)
	notifier := infrastructure.NewNotifier(session)
	ytdlpResolver := infrastructure.NewYtdlpResolver()

	var resolver ports.SongResolver = lavalinkAdapter
	if m.config.Resolver == "ytdlp" {
		resolver = ytdlpResolver
	}

	voices := voice.NewManager(lavalinkAdapter, lavalinkAdapter, m.config.JoinNewChannel)
	queues := usecases.NewQueueManager(m.eventBus, domain.QueueOptions{
		HistoryEnabled: m.config.HistoryEnabled,
		HistoryLimit:   m.config.HistoryLimit,
	}, m.config.DefaultVolume)

	playback := usecases.NewPlaybackService(
		queues,
		voices,
		resolver,
		ytdlpResolver,
		voiceState,
		m.eventBus,
		usecases.PlaybackOptions{
			LeaveOnStop:   m.config.LeaveOnStop,
			LeaveOnFinish: m.config.LeaveOnFinish,
		},
	)
	queueService := usecases.NewQueueService(queues, voices)

	m.playbackHandler = application.NewPlaybackEventHandler(playback, queues, voices, m.eventBus)
	m.playbackHandler.Start()

	m.notificationHandler = presentation.NewNotificationEventHandler(notifier, m.eventBus)
	m.notificationHandler.Start()

	if m.config.LeaveOnEmpty {
		m.emptyWatcher = presentation.NewEmptyChannelWatcher(
			voices,
			voiceState,
			m.eventBus,
			m.config.EmptyCooldown,
		)
	}

	m.commandHandlers = presentation.NewCommandHandlers(playback, queueService, voices, voiceState)

	slog.Info("music_player module initialized",
		"resolver", m.config.Resolver,
		"lavalink", m.config.LavalinkAddress,
	)

	return nil
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	if m.emptyWatcher != nil {
		m.emptyWatcher.Stop()
	}

	if m.eventBus != nil {
		m.eventBus.Close()
	}

	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	return nil
}

// Gateway event plumbing.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.emptyWatcher != nil {
		m.emptyWatcher.HandleVoiceStateUpdate(s, event)
	}
}
