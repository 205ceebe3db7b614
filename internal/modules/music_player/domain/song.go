package domain

import (
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// SongID is the source-level identifier of a song (e.g. a YouTube video ID).
type SongID string

// Song is a playable unit produced by a resolver. Apart from the requester
// and caller metadata, which are stamped once at resolve time, a Song is
// never mutated by the playback engine.
type Song struct {
	ID        SongID
	URL       string
	Title     string
	Uploader  string
	Duration  time.Duration
	IsStream  bool
	Thumbnail string
	Source    string // e.g. "youtube", "soundcloud", "http"
	Encoded   string // opaque transport payload (Lavalink encoded track), may be empty

	// Related is a snapshot of related songs taken at resolve time.
	// Autoplay walks this list; it is never refreshed afterwards.
	Related []RelatedSong

	RequesterID   snowflake.ID
	RequesterName string
	EnqueuedAt    time.Time

	// Metadata carries arbitrary caller-attached data through the queue.
	Metadata any
}

// RelatedSong is a lightweight reference used by autoplay. It is resolved
// into a full Song only when it is about to be enqueued.
type RelatedSong struct {
	ID    SongID
	URL   string
	Title string
}

// StampRequester attaches the requesting member and caller metadata.
// Called exactly once, by the resolver, before the song enters a queue.
func (s *Song) StampRequester(id snowflake.ID, name string, metadata any) {
	s.RequesterID = id
	s.RequesterName = name
	s.Metadata = metadata
	s.EnqueuedAt = time.Now().UTC()
}

// FormattedDuration returns the duration as mm:ss or hh:mm:ss, or LIVE for streams.
func (s *Song) FormattedDuration() string {
	if s.IsStream {
		return "LIVE"
	}

	totalSeconds := int(s.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// Playlist is an ordered collection of songs plus playlist-level metadata.
// It is immutable after construction; the queue flattens it into songs.
type Playlist struct {
	Name      string
	URL       string
	Thumbnail string
	Source    string
	Songs     []*Song

	RequesterID   snowflake.ID
	RequesterName string
}

// Duration returns the summed duration of all songs in the playlist.
func (p *Playlist) Duration() time.Duration {
	var total time.Duration
	for _, s := range p.Songs {
		total += s.Duration
	}
	return total
}
