package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/application/events"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

func newTestManager() (*QueueManager, *events.Bus) {
	bus := events.NewBus(16)
	return NewQueueManager(bus, domain.QueueOptions{HistoryEnabled: true}, 0), bus
}

func TestQueueManager_Create(t *testing.T) {
	m, bus := newTestManager()
	defer bus.Close()

	queue, err := m.Create(testGuildID, testTextID, []*domain.Song{song("a")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queue.GuildID != testGuildID {
		t.Errorf("expected guild %d, got %d", testGuildID, queue.GuildID)
	}

	if _, err := m.Create(testGuildID, testTextID, []*domain.Song{song("b")}); !errors.Is(err, ErrQueueExists) {
		t.Errorf("expected ErrQueueExists, got %v", err)
	}
}

func TestQueueManager_CreatePublishesInitialized(t *testing.T) {
	m, bus := newTestManager()
	defer bus.Close()

	initialized := make(chan events.QueueInitializedEvent, 1)
	bus.OnQueueInitialized(func(_ context.Context, e events.QueueInitializedEvent) {
		initialized <- e
	})

	if _, err := m.Create(testGuildID, testTextID, []*domain.Song{song("a")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case e := <-initialized:
		if e.TextChannelID != testTextID {
			t.Errorf("expected text channel %d, got %d", testTextID, e.TextChannelID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a queue initialized event")
	}
}

func TestQueueManager_DefaultVolume(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()
	m := NewQueueManager(bus, domain.QueueOptions{}, 75)

	queue, err := m.Create(testGuildID, testTextID, []*domain.Song{song("a")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queue.Volume() != 75 {
		t.Errorf("expected volume 75, got %d", queue.Volume())
	}
}

func TestQueueManager_Delete(t *testing.T) {
	m, bus := newTestManager()
	defer bus.Close()

	queue, _ := m.Create(testGuildID, testTextID, []*domain.Song{song("a")})

	if !m.Delete(testGuildID) {
		t.Fatal("expected delete to report removal")
	}
	if queue.State() != domain.StateStopped {
		t.Errorf("expected stopped, got %v", queue.State())
	}
	if _, ok := m.Get(testGuildID); ok {
		t.Error("expected the queue to be gone")
	}
	if m.Delete(testGuildID) {
		t.Error("expected a second delete to be a no-op")
	}
}

func TestQueueManager_TasksSurviveRecreation(t *testing.T) {
	m, bus := newTestManager()
	defer bus.Close()

	first, _ := m.Create(testGuildID, testTextID, []*domain.Song{song("a")})
	tasks := m.GuildTasks(testGuildID)
	if first.Tasks != tasks {
		t.Fatal("expected the queue to share the guild task queue")
	}

	m.Delete(testGuildID)

	second, _ := m.Create(testGuildID, testTextID, []*domain.Song{song("b")})
	if second.Tasks != tasks {
		t.Error("expected the recreated queue to share the same task queue")
	}
}

func TestQueueManager_Resolve(t *testing.T) {
	m, bus := newTestManager()
	defer bus.Close()

	created, _ := m.Create(testGuildID, testTextID, []*domain.Song{song("a")})

	queue, err := m.Resolve(testGuildID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queue != created {
		t.Error("expected the created queue")
	}

	if _, err := m.Resolve(snowflake.ID(999)); !errors.Is(err, ErrNoQueue) {
		t.Errorf("expected ErrNoQueue, got %v", err)
	}
	if _, err := m.Resolve(3.14); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
}

func TestQueueManager_All(t *testing.T) {
	m, bus := newTestManager()
	defer bus.Close()

	m.Create(snowflake.ID(1), testTextID, []*domain.Song{song("a")})
	m.Create(snowflake.ID(2), testTextID, []*domain.Song{song("b")})

	if got := len(m.All()); got != 2 {
		t.Errorf("expected 2 queues, got %d", got)
	}
}
