package voice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/application/ports"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// ConnState is the lifecycle state of a guild voice connection.
type ConnState int

const (
	ConnStateDisconnected ConnState = iota
	ConnStateConnecting
	ConnStateReady
	ConnStateDestroyed
)

// String returns a human-readable representation of the connection state.
func (s ConnState) String() string {
	switch s {
	case ConnStateConnecting:
		return "connecting"
	case ConnStateReady:
		return "ready"
	case ConnStateDestroyed:
		return "destroyed"
	default:
		return "disconnected"
	}
}

// Voice wraps a single guild's voice connection and its audio stream.
// All stream operations route through it so the connection state is
// checked in one place.
type Voice struct {
	guildID snowflake.ID

	gateway ports.VoiceGateway
	stream  ports.StreamPlayer

	mu        sync.RWMutex
	channelID snowflake.ID
	state     ConnState
}

// New creates a voice wrapper for the guild. It starts disconnected;
// call Join to connect.
func New(guildID snowflake.ID, gateway ports.VoiceGateway, stream ports.StreamPlayer) *Voice {
	return &Voice{
		guildID: guildID,
		gateway: gateway,
		stream:  stream,
	}
}

// GuildID returns the guild this connection belongs to.
func (v *Voice) GuildID() snowflake.ID {
	return v.guildID
}

// ChannelID returns the connected voice channel, or zero when disconnected.
func (v *Voice) ChannelID() snowflake.ID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.channelID
}

// State returns the connection state.
func (v *Voice) State() ConnState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Join connects to the given voice channel. Joining the channel the
// connection is already in is a no-op; a different channel moves the bot.
func (v *Voice) Join(ctx context.Context, channelID snowflake.ID) error {
	v.mu.Lock()
	if v.state == ConnStateDestroyed {
		v.mu.Unlock()
		return fmt.Errorf("%w: voice connection destroyed", domain.ErrInvalidState)
	}
	if v.state == ConnStateReady && v.channelID == channelID {
		v.mu.Unlock()
		return nil
	}
	v.state = ConnStateConnecting
	v.mu.Unlock()

	if err := v.gateway.JoinChannel(ctx, v.guildID, channelID); err != nil {
		v.mu.Lock()
		v.state = ConnStateDisconnected
		v.mu.Unlock()
		return fmt.Errorf("joining voice channel: %w", err)
	}

	v.mu.Lock()
	v.channelID = channelID
	v.state = ConnStateReady
	v.mu.Unlock()
	return nil
}

// Leave stops the stream, disconnects, and destroys the connection.
// The wrapper cannot be reused afterwards.
func (v *Voice) Leave(ctx context.Context) error {
	v.mu.Lock()
	if v.state == ConnStateDestroyed {
		v.mu.Unlock()
		return nil
	}
	v.state = ConnStateDestroyed
	v.channelID = 0
	v.mu.Unlock()

	if err := v.stream.Stop(ctx, v.guildID); err != nil {
		return fmt.Errorf("stopping stream: %w", err)
	}
	if err := v.gateway.LeaveChannel(ctx, v.guildID); err != nil {
		return fmt.Errorf("leaving voice channel: %w", err)
	}
	return nil
}

// MarkDisconnected records an externally observed disconnect, e.g. the
// bot being moved out or the gateway dropping.
func (v *Voice) MarkDisconnected() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == ConnStateDestroyed {
		return
	}
	v.state = ConnStateDisconnected
	v.channelID = 0
}

func (v *Voice) requireReady() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.state != ConnStateReady {
		return fmt.Errorf("%w: voice connection is %s", domain.ErrInvalidState, v.state)
	}
	return nil
}

// Play starts streaming the given song on this connection.
func (v *Voice) Play(ctx context.Context, song *domain.Song, opts ports.PlayOptions) error {
	if err := v.requireReady(); err != nil {
		return err
	}
	return v.stream.Play(ctx, v.guildID, song, opts)
}

// Stop ends the current stream without disconnecting.
func (v *Voice) Stop(ctx context.Context) error {
	if err := v.requireReady(); err != nil {
		return err
	}
	return v.stream.Stop(ctx, v.guildID)
}

// Pause pauses the current stream.
func (v *Voice) Pause(ctx context.Context) error {
	if err := v.requireReady(); err != nil {
		return err
	}
	return v.stream.Pause(ctx, v.guildID)
}

// Unpause resumes the paused stream.
func (v *Voice) Unpause(ctx context.Context) error {
	if err := v.requireReady(); err != nil {
		return err
	}
	return v.stream.Resume(ctx, v.guildID)
}

// SetVolume applies the volume percent to the running stream.
func (v *Voice) SetVolume(ctx context.Context, percent int) error {
	if err := v.requireReady(); err != nil {
		return err
	}
	return v.stream.SetVolume(ctx, v.guildID, percent)
}

// ApplyFilters rebuilds the stream pipeline with the given filters.
func (v *Voice) ApplyFilters(ctx context.Context, filters domain.FilterList) error {
	if err := v.requireReady(); err != nil {
		return err
	}
	return v.stream.ApplyFilters(ctx, v.guildID, filters)
}

// Seek moves the current stream to the given position.
func (v *Voice) Seek(ctx context.Context, position time.Duration) error {
	if err := v.requireReady(); err != nil {
		return err
	}
	return v.stream.Seek(ctx, v.guildID, position)
}

// Position returns the playback position of the current stream.
func (v *Voice) Position() (time.Duration, error) {
	if err := v.requireReady(); err != nil {
		return 0, err
	}
	return v.stream.Position(v.guildID)
}
