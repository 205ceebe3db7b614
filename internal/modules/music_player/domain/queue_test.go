package domain

import (
	"errors"
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

const (
	testGuildID       = snowflake.ID(1)
	testTextChannelID = snowflake.ID(2)
)

func testSong(id string) *Song {
	return &Song{ID: SongID(id), Title: id}
}

func testSongs(ids ...string) []*Song {
	songs := make([]*Song, len(ids))
	for i, id := range ids {
		songs[i] = testSong(id)
	}
	return songs
}

func newTestQueue(ids ...string) *Queue {
	return NewQueue(testGuildID, testTextChannelID, testSongs(ids...), QueueOptions{
		HistoryEnabled: true,
	})
}

func assertIDs(t *testing.T, got []*Song, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d songs, got %d", len(want), len(got))
	}
	for i, s := range got {
		if string(s.ID) != want[i] {
			t.Errorf("song %d: expected %q, got %q", i, want[i], s.ID)
		}
	}
}

func assertCurrent(t *testing.T, q *Queue, want string) {
	t.Helper()
	current := q.Current()
	if current == nil {
		t.Fatalf("expected current %q, got nil", want)
	}
	if string(current.ID) != want {
		t.Errorf("expected current %q, got %q", want, current.ID)
	}
}

func TestNewQueue(t *testing.T) {
	q := newTestQueue("a", "b", "c")

	if q.GuildID != testGuildID {
		t.Errorf("expected GuildID %d, got %d", testGuildID, q.GuildID)
	}
	assertCurrent(t, q, "a")
	assertIDs(t, q.Upcoming(), "b", "c")
	if q.State() != StatePlaying {
		t.Errorf("expected state playing, got %v", q.State())
	}
	if q.Volume() != DefaultVolume {
		t.Errorf("expected volume %d, got %d", DefaultVolume, q.Volume())
	}
	if q.RepeatMode() != RepeatModeDisabled {
		t.Errorf("expected repeat off, got %v", q.RepeatMode())
	}
	if q.Autoplay() {
		t.Error("expected autoplay disabled")
	}
}

func TestQueue_Enqueue(t *testing.T) {
	tests := []struct {
		name         string
		position     int
		wantPos      int
		wantUpcoming []string
	}{
		{
			name:         "position 0 appends",
			position:     0,
			wantPos:      4,
			wantUpcoming: []string{"b", "c", "d", "x", "y"},
		},
		{
			name:         "negative position appends",
			position:     -3,
			wantPos:      4,
			wantUpcoming: []string{"b", "c", "d", "x", "y"},
		},
		{
			name:         "past the end appends",
			position:     9,
			wantPos:      4,
			wantUpcoming: []string{"b", "c", "d", "x", "y"},
		},
		{
			name:         "position 1 inserts at the front",
			position:     1,
			wantPos:      1,
			wantUpcoming: []string{"x", "y", "b", "c", "d"},
		},
		{
			name:         "position 2 inserts in the middle",
			position:     2,
			wantPos:      2,
			wantUpcoming: []string{"b", "x", "y", "c", "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestQueue("a", "b", "c", "d")

			got := q.Enqueue(tt.position, testSongs("x", "y")...)

			if got != tt.wantPos {
				t.Errorf("Enqueue() = %d, want %d", got, tt.wantPos)
			}
			assertIDs(t, q.Upcoming(), tt.wantUpcoming...)
		})
	}
}

func TestQueue_AdvanceNatural_RepeatDisabled(t *testing.T) {
	q := newTestQueue("a", "b")

	next := q.AdvanceNatural()

	if next == nil || string(next.ID) != "b" {
		t.Fatalf("expected to advance to b, got %v", next)
	}
	assertIDs(t, q.History(), "a")
	assertIDs(t, q.Upcoming())
}

func TestQueue_AdvanceNatural_RepeatSong(t *testing.T) {
	q := newTestQueue("a", "b")
	q.SetRepeatMode(RepeatModeSong)

	next := q.AdvanceNatural()

	if next == nil || string(next.ID) != "a" {
		t.Fatalf("expected to replay a, got %v", next)
	}
	assertIDs(t, q.Upcoming(), "b")
	assertIDs(t, q.History())
}

func TestQueue_AdvanceNatural_RepeatQueue(t *testing.T) {
	q := newTestQueue("a", "b", "c")
	q.SetRepeatMode(RepeatModeQueue)

	next := q.AdvanceNatural()

	if next == nil || string(next.ID) != "b" {
		t.Fatalf("expected to advance to b, got %v", next)
	}
	assertIDs(t, q.Upcoming(), "c", "a")
	assertIDs(t, q.History(), "a")
}

func TestQueue_AdvanceNatural_Exhausted(t *testing.T) {
	q := newTestQueue("a")

	if next := q.AdvanceNatural(); next != nil {
		t.Fatalf("expected nil on exhaustion, got %v", next)
	}
	if !q.IsEmpty() {
		t.Error("expected queue to be empty")
	}
	assertIDs(t, q.History(), "a")
}

func TestQueue_AdvanceSkip_BypassesRepeatSong(t *testing.T) {
	q := newTestQueue("a", "b")
	q.SetRepeatMode(RepeatModeSong)

	next := q.AdvanceSkip()

	if next == nil || string(next.ID) != "b" {
		t.Fatalf("expected skip to reach b, got %v", next)
	}
	assertIDs(t, q.History(), "a")
}

func TestQueue_AdvanceSkip_RepeatQueueRotates(t *testing.T) {
	q := newTestQueue("a", "b")
	q.SetRepeatMode(RepeatModeQueue)

	next := q.AdvanceSkip()

	if next == nil || string(next.ID) != "b" {
		t.Fatalf("expected skip to reach b, got %v", next)
	}
	assertIDs(t, q.Upcoming(), "a")
}

func TestQueue_Jump_Forward(t *testing.T) {
	q := newTestQueue("a", "b", "c", "d")

	got, err := q.Jump(2)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got.ID) != "c" {
		t.Errorf("expected to jump to c, got %q", got.ID)
	}
	assertIDs(t, q.History(), "a", "b")
	assertIDs(t, q.Upcoming(), "d")
}

func TestQueue_Jump_Backward(t *testing.T) {
	q := newTestQueue("a", "b", "c", "d", "e")
	q.AdvanceNatural() // a -> history
	q.AdvanceNatural() // b -> history
	q.AdvanceNatural() // current is d
	assertCurrent(t, q, "d")

	got, err := q.Jump(-2)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got.ID) != "b" {
		t.Errorf("expected to jump back to b, got %q", got.ID)
	}
	assertIDs(t, q.History(), "a")
	assertIDs(t, q.Upcoming(), "c", "d", "e")
}

func TestQueue_Jump_Errors(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		want   error
	}{
		{
			name:   "zero offset",
			offset: 0,
			want:   ErrInvalidArgument,
		},
		{
			name:   "past the upcoming list",
			offset: 5,
			want:   ErrNotFound,
		},
		{
			name:   "past the history",
			offset: -1,
			want:   ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestQueue("a", "b", "c")

			_, err := q.Jump(tt.offset)

			if !errors.Is(err, tt.want) {
				t.Errorf("Jump(%d) error = %v, want %v", tt.offset, err, tt.want)
			}
			assertCurrent(t, q, "a")
			assertIDs(t, q.Upcoming(), "b", "c")
		})
	}
}

func TestQueue_Jump_BackwardWithHistoryDisabled(t *testing.T) {
	q := NewQueue(testGuildID, testTextChannelID, testSongs("a", "b"), QueueOptions{})
	q.AdvanceNatural()

	if _, err := q.Jump(-1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestQueue_Previous(t *testing.T) {
	q := newTestQueue("a", "b", "c")
	q.AdvanceNatural()
	assertCurrent(t, q, "b")

	got, err := q.Previous()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got.ID) != "a" {
		t.Errorf("expected previous song a, got %q", got.ID)
	}
	assertIDs(t, q.History())
	assertIDs(t, q.Upcoming(), "b", "c")
}

func TestQueue_Shuffle(t *testing.T) {
	q := newTestQueue("a", "b", "c", "d", "e", "f")

	q.Shuffle()

	assertCurrent(t, q, "a")
	upcoming := q.Upcoming()
	if len(upcoming) != 5 {
		t.Fatalf("expected 5 upcoming songs, got %d", len(upcoming))
	}
	seen := make(map[SongID]bool)
	for _, s := range upcoming {
		seen[s.ID] = true
	}
	for _, id := range []string{"b", "c", "d", "e", "f"} {
		if !seen[SongID(id)] {
			t.Errorf("song %q missing after shuffle", id)
		}
	}
}

func TestQueue_HistoryLimit(t *testing.T) {
	q := NewQueue(testGuildID, testTextChannelID, testSongs("a", "b", "c", "d"), QueueOptions{
		HistoryEnabled: true,
		HistoryLimit:   2,
	})

	q.AdvanceNatural()
	q.AdvanceNatural()
	q.AdvanceNatural()

	assertIDs(t, q.History(), "b", "c")
}

func TestQueue_HistoryDisabled(t *testing.T) {
	q := NewQueue(testGuildID, testTextChannelID, testSongs("a", "b"), QueueOptions{})

	q.AdvanceNatural()

	assertIDs(t, q.History())
}

func TestQueue_SetState_StoppedIsTerminal(t *testing.T) {
	q := newTestQueue("a")

	q.SetState(StateStopped)
	q.SetState(StatePlaying)

	if q.State() != StateStopped {
		t.Errorf("expected stopped, got %v", q.State())
	}
}

func TestQueue_ToggleAutoplay(t *testing.T) {
	q := newTestQueue("a")

	if got := q.ToggleAutoplay(); !got {
		t.Error("expected autoplay enabled after first toggle")
	}
	if got := q.ToggleAutoplay(); got {
		t.Error("expected autoplay disabled after second toggle")
	}
}

func TestQueue_CycleRepeatMode(t *testing.T) {
	q := newTestQueue("a")

	if got := q.CycleRepeatMode(); got != RepeatModeSong {
		t.Errorf("expected song, got %v", got)
	}
	if got := q.CycleRepeatMode(); got != RepeatModeQueue {
		t.Errorf("expected queue, got %v", got)
	}
	if got := q.CycleRepeatMode(); got != RepeatModeDisabled {
		t.Errorf("expected off, got %v", got)
	}
}

func TestQueue_NextRelated(t *testing.T) {
	q := newTestQueue("a", "b")
	current := q.Current()
	current.Related = []RelatedSong{
		{ID: "a", Title: "a"},
		{ID: "r1", Title: "r1"},
		{ID: "r2", Title: "r2"},
	}

	got, err := q.NextRelated()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got.ID) != "r1" {
		t.Errorf("expected r1, got %q", got.ID)
	}
}

func TestQueue_NextRelated_SkipsHistory(t *testing.T) {
	q := newTestQueue("a", "b")
	q.AdvanceNatural()
	current := q.Current()
	current.Related = []RelatedSong{
		{ID: "a", Title: "a"},
		{ID: "r1", Title: "r1"},
	}

	got, err := q.NextRelated()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got.ID) != "r1" {
		t.Errorf("expected r1, got %q", got.ID)
	}
}

func TestQueue_NextRelated_Exhausted(t *testing.T) {
	tests := []struct {
		name    string
		related []RelatedSong
	}{
		{
			name:    "empty snapshot",
			related: nil,
		},
		{
			name:    "everything already played",
			related: []RelatedSong{{ID: "a", Title: "a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestQueue("a")
			q.Current().Related = tt.related

			if _, err := q.NextRelated(); !errors.Is(err, ErrSourceExhausted) {
				t.Errorf("expected source exhausted, got %v", err)
			}
		})
	}
}

func TestQueue_UpcomingReturnsCopy(t *testing.T) {
	q := newTestQueue("a", "b", "c")

	upcoming := q.Upcoming()
	upcoming[0] = testSong("z")

	assertIDs(t, q.Upcoming(), "b", "c")
}
