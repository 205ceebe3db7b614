package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// ResolveOptions carries requester identity and caller metadata that the
// resolver stamps onto every resolved song.
type ResolveOptions struct {
	RequesterID   snowflake.ID
	RequesterName string
	Metadata      any
}

// ResolveResult holds the outcome of a resolve: exactly one of Song or
// Playlist is set.
type ResolveResult struct {
	Song     *domain.Song
	Playlist *domain.Playlist
}

// SongResolver defines the interface for turning a URL or search query
// into playable songs.
type SongResolver interface {
	// Resolve loads the songs behind the given query. Search queries
	// resolve to the best single match.
	Resolve(ctx context.Context, query string, opts ResolveOptions) (*ResolveResult, error)
}

// RelatedProvider defines the interface for fetching songs related to the
// one given, used to snapshot autoplay candidates at resolve time.
type RelatedProvider interface {
	FindRelated(ctx context.Context, song *domain.Song) ([]domain.RelatedSong, error)
}
