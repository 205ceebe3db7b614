package music_player

import "time"

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE"   envDefault:"false"`

	// Resolver selects how /play queries are resolved: "lavalink" asks the
	// node directly, "ytdlp" extracts metadata locally and leaves the node
	// to load by URL.
	Resolver string `env:"MUSIC_RESOLVER" envDefault:"lavalink"`

	DefaultVolume  int  `env:"MUSIC_DEFAULT_VOLUME" envDefault:"100"`
	HistoryEnabled bool `env:"MUSIC_SAVE_HISTORY"   envDefault:"true"`
	HistoryLimit   int  `env:"MUSIC_HISTORY_LIMIT"  envDefault:"100"`

	// JoinNewChannel lets a /play from another voice channel pull the bot
	// over instead of failing.
	JoinNewChannel bool `env:"MUSIC_JOIN_NEW_CHANNEL" envDefault:"false"`

	LeaveOnStop   bool          `env:"MUSIC_LEAVE_ON_STOP"   envDefault:"true"`
	LeaveOnFinish bool          `env:"MUSIC_LEAVE_ON_FINISH" envDefault:"false"`
	LeaveOnEmpty  bool          `env:"MUSIC_LEAVE_ON_EMPTY"  envDefault:"true"`
	EmptyCooldown time.Duration `env:"MUSIC_EMPTY_COOLDOWN"  envDefault:"60s"`

	EventBufferSize int `env:"MUSIC_EVENT_BUFFER_SIZE" envDefault:"100"`
}
