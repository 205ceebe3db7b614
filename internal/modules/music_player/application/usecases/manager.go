package usecases

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/application/events"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// QueueManager owns at most one queue per guild. Task queues are kept
// per guild rather than per queue so that serialization survives a queue
// being deleted and recreated.
type QueueManager struct {
	bus           *events.Bus
	queueOpts     domain.QueueOptions
	defaultVolume int

	mu     sync.RWMutex
	queues map[snowflake.ID]*domain.Queue
	tasks  map[snowflake.ID]*domain.TaskQueue
}

// NewQueueManager creates a manager that builds queues with the given
// options. A defaultVolume of 0 keeps the built-in default.
func NewQueueManager(bus *events.Bus, queueOpts domain.QueueOptions, defaultVolume int) *QueueManager {
	return &QueueManager{
		bus:           bus,
		queueOpts:     queueOpts,
		defaultVolume: defaultVolume,
		queues:        make(map[snowflake.ID]*domain.Queue),
		tasks:         make(map[snowflake.ID]*domain.TaskQueue),
	}
}

// GuildTasks returns the guild's task queue, creating it on first use.
func (m *QueueManager) GuildTasks(guildID snowflake.ID) *domain.TaskQueue {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks, ok := m.tasks[guildID]
	if !ok {
		tasks = domain.NewTaskQueue()
		m.tasks[guildID] = tasks
	}
	return tasks
}

// Create registers a new queue for the guild seeded with the given songs.
// Fails with ErrQueueExists when the guild already has one.
func (m *QueueManager) Create(guildID, textChannelID snowflake.ID, songs []*domain.Song) (*domain.Queue, error) {
	m.mu.Lock()
	if _, ok := m.queues[guildID]; ok {
		m.mu.Unlock()
		return nil, ErrQueueExists
	}

	queue := domain.NewQueue(guildID, textChannelID, songs, m.queueOpts)
	tasks, ok := m.tasks[guildID]
	if !ok {
		tasks = domain.NewTaskQueue()
		m.tasks[guildID] = tasks
	}
	queue.Tasks = tasks
	m.queues[guildID] = queue
	m.mu.Unlock()

	if m.defaultVolume > 0 {
		queue.SetVolume(m.defaultVolume)
	}

	m.bus.PublishQueueInitialized(events.QueueInitializedEvent{
		GuildID:       guildID,
		TextChannelID: textChannelID,
	})
	return queue, nil
}

// Get returns the guild's queue, if any.
func (m *QueueManager) Get(guildID snowflake.ID) (*domain.Queue, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	queue, ok := m.queues[guildID]
	return queue, ok
}

// Resolve looks up a queue from any guild-identifying value.
func (m *QueueManager) Resolve(resolvable any) (*domain.Queue, error) {
	guildID, err := ResolveGuildID(resolvable)
	if err != nil {
		return nil, err
	}
	queue, ok := m.Get(guildID)
	if !ok {
		return nil, ErrNoQueue
	}
	return queue, nil
}

// All returns every active queue.
func (m *QueueManager) All() []*domain.Queue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	queues := make([]*domain.Queue, 0, len(m.queues))
	for _, q := range m.queues {
		queues = append(queues, q)
	}
	return queues
}

// Delete removes the guild's queue, marking it stopped. Deleting a guild
// with no queue is a no-op.
func (m *QueueManager) Delete(guildID snowflake.ID) bool {
	m.mu.Lock()
	queue, ok := m.queues[guildID]
	if ok {
		delete(m.queues, guildID)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}

	queue.SetState(domain.StateStopped)
	m.bus.PublishQueueDeleted(events.QueueDeletedEvent{GuildID: guildID})
	return true
}
