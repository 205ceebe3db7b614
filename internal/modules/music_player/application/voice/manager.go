package voice

import (
	"context"
	"fmt"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/application/ports"
)

// Manager owns at most one voice connection per guild.
type Manager struct {
	gateway ports.VoiceGateway
	stream  ports.StreamPlayer

	// joinNewChannel allows Join to move an existing connection when the
	// requested channel differs from the connected one.
	joinNewChannel bool

	mu     sync.RWMutex
	voices map[snowflake.ID]*Voice
}

// NewManager creates a manager that builds connections on the given
// gateway and stream player.
func NewManager(gateway ports.VoiceGateway, stream ports.StreamPlayer, joinNewChannel bool) *Manager {
	return &Manager{
		gateway:        gateway,
		stream:         stream,
		joinNewChannel: joinNewChannel,
		voices:         make(map[snowflake.ID]*Voice),
	}
}

// Get returns the guild's voice connection, if any.
func (m *Manager) Get(guildID snowflake.ID) (*Voice, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.voices[guildID]
	return v, ok
}

// Join returns a ready connection to the given channel, creating one when
// the guild has none. When the guild is already connected elsewhere, the
// bot moves only if joinNewChannel is set; otherwise the existing
// connection is returned untouched.
func (m *Manager) Join(ctx context.Context, guildID, channelID snowflake.ID) (*Voice, error) {
	m.mu.Lock()
	v, ok := m.voices[guildID]
	if !ok {
		v = New(guildID, m.gateway, m.stream)
		m.voices[guildID] = v
	}
	m.mu.Unlock()

	if ok && v.State() == ConnStateReady && v.ChannelID() != channelID && !m.joinNewChannel {
		return v, nil
	}

	if err := v.Join(ctx, channelID); err != nil {
		m.mu.Lock()
		if !ok {
			delete(m.voices, guildID)
		}
		m.mu.Unlock()
		return nil, fmt.Errorf("joining guild %d: %w", guildID, err)
	}
	return v, nil
}

// Leave disconnects and removes the guild's connection. Leaving a guild
// with no connection is a no-op.
func (m *Manager) Leave(ctx context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	v, ok := m.voices[guildID]
	if ok {
		delete(m.voices, guildID)
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return v.Leave(ctx)
}

// HandleDisconnect records an external disconnect and removes the
// guild's connection.
func (m *Manager) HandleDisconnect(guildID snowflake.ID) {
	m.mu.Lock()
	v, ok := m.voices[guildID]
	if ok {
		delete(m.voices, guildID)
	}
	m.mu.Unlock()

	if ok {
		v.MarkDisconnected()
	}
}
