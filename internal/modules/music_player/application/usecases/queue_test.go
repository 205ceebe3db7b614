package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

func TestQueueService_SetVolume(t *testing.T) {
	f := newFixture(PlaybackOptions{})
	defer f.close()
	f.addResult("query", song("a"))
	ctx := context.Background()

	if err := f.queueSvc.SetVolume(ctx, testGuildID, 0); !errors.Is(err, ErrInvalidVolume) {
		t.Errorf("expected ErrInvalidVolume for 0, got %v", err)
	}
	if err := f.queueSvc.SetVolume(ctx, testGuildID, -10); !errors.Is(err, ErrInvalidVolume) {
		t.Errorf("expected ErrInvalidVolume for -10, got %v", err)
	}
	if err := f.queueSvc.SetVolume(ctx, testGuildID, 50); !errors.Is(err, ErrNoQueue) {
		t.Errorf("expected ErrNoQueue, got %v", err)
	}

	out, _ := f.play(ctx, "query")
	out.Queue.Current().IsStream = true

	// No upper bound: volume above 100 is legal, even on a live stream.
	if err := f.queueSvc.SetVolume(ctx, testGuildID, 150); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Queue.Volume() != 150 {
		t.Errorf("expected volume 150, got %d", out.Queue.Volume())
	}
	if f.stream.volume != 150 {
		t.Errorf("expected stream volume 150, got %d", f.stream.volume)
	}
}

func TestQueueService_SetRepeatMode(t *testing.T) {
	f := newFixture(PlaybackOptions{})
	defer f.close()
	f.addResult("query", song("a"))
	ctx := context.Background()

	out, _ := f.play(ctx, "query")

	mode := domain.RepeatModeQueue
	got, err := f.queueSvc.SetRepeatMode(ctx, testGuildID, &mode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != domain.RepeatModeQueue {
		t.Errorf("expected queue mode, got %v", got)
	}
	if out.Queue.RepeatMode() != domain.RepeatModeQueue {
		t.Errorf("expected queue mode on the queue, got %v", out.Queue.RepeatMode())
	}
}

func TestQueueService_SetRepeatMode_CyclesWhenNil(t *testing.T) {
	f := newFixture(PlaybackOptions{})
	defer f.close()
	f.addResult("query", song("a"))
	ctx := context.Background()

	f.play(ctx, "query")

	want := []domain.RepeatMode{domain.RepeatModeSong, domain.RepeatModeQueue, domain.RepeatModeDisabled}
	for _, expected := range want {
		got, err := f.queueSvc.SetRepeatMode(ctx, testGuildID, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != expected {
			t.Errorf("expected %v, got %v", expected, got)
		}
	}
}

func TestQueueService_Shuffle(t *testing.T) {
	f := newFixture(PlaybackOptions{})
	defer f.close()
	f.addResult("query", song("a"))
	ctx := context.Background()

	out, _ := f.play(ctx, "query")
	for _, id := range []string{"b", "c", "d", "e"} {
		out.Queue.Enqueue(0, song(id))
	}
	historyBefore := len(out.Queue.History())

	if err := f.queueSvc.Shuffle(ctx, testGuildID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Queue.Current().ID != "a" {
		t.Error("expected the current song to be untouched")
	}
	if len(out.Queue.History()) != historyBefore {
		t.Error("expected the history to be untouched")
	}
	upcoming := out.Queue.Upcoming()
	if len(upcoming) != 4 {
		t.Fatalf("expected 4 upcoming songs, got %d", len(upcoming))
	}
	seen := make(map[domain.SongID]bool)
	for _, s := range upcoming {
		seen[s.ID] = true
	}
	for _, id := range []string{"b", "c", "d", "e"} {
		if !seen[domain.SongID(id)] {
			t.Errorf("song %q missing after shuffle", id)
		}
	}
}

func TestQueueService_ToggleAutoplay(t *testing.T) {
	f := newFixture(PlaybackOptions{})
	defer f.close()
	f.addResult("query", song("a"))
	ctx := context.Background()

	if _, err := f.queueSvc.ToggleAutoplay(ctx, testGuildID); !errors.Is(err, ErrNoQueue) {
		t.Errorf("expected ErrNoQueue, got %v", err)
	}

	f.play(ctx, "query")

	on, err := f.queueSvc.ToggleAutoplay(ctx, testGuildID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !on {
		t.Error("expected autoplay on")
	}
}

func TestQueueService_SetFilters(t *testing.T) {
	f := newFixture(PlaybackOptions{})
	defer f.close()
	f.addResult("query", song("a"))
	ctx := context.Background()

	out, _ := f.play(ctx, "query")
	filters := domain.FilterList{{Name: "nightcore"}, {Name: "tremolo"}}

	if err := f.queueSvc.SetFilters(ctx, testGuildID, filters); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !out.Queue.Filters().Has("nightcore") {
		t.Error("expected nightcore on the queue")
	}
	if !f.stream.filters.Has("tremolo") {
		t.Error("expected tremolo applied to the stream")
	}
}

func TestQueueService_Snapshot(t *testing.T) {
	f := newFixture(PlaybackOptions{})
	defer f.close()
	f.addResult("query", song("a"))
	ctx := context.Background()

	if _, err := f.queueSvc.Snapshot(testGuildID); !errors.Is(err, ErrNoQueue) {
		t.Errorf("expected ErrNoQueue, got %v", err)
	}

	out, _ := f.play(ctx, "query")
	out.Queue.Enqueue(0, song("b"))

	snap, err := f.queueSvc.Snapshot(testGuildID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Current.ID != "a" {
		t.Errorf("expected current a, got %q", snap.Current.ID)
	}
	if len(snap.Upcoming) != 1 || snap.Upcoming[0].ID != "b" {
		t.Error("expected upcoming [b]")
	}
	if snap.Volume != domain.DefaultVolume {
		t.Errorf("expected volume %d, got %d", domain.DefaultVolume, snap.Volume)
	}
	if snap.State != domain.StatePlaying {
		t.Errorf("expected playing, got %v", snap.State)
	}
}
