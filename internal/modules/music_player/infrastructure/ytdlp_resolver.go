package infrastructure

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	ytdlp "github.com/lrstanley/go-ytdlp"
	"github.com/ppalone/ytsearch"
	"github.com/sawakoto/canora/internal/modules/music_player/application/ports"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// maxRelatedSongs bounds the autoplay snapshot per song.
const maxRelatedSongs = 10

var ytdlpInstallOnce sync.Once

// YtdlpResolver resolves queries with yt-dlp and fills autoplay snapshots
// with YouTube search results. It is the resolver used when no Lavalink
// node is configured; songs it produces carry no encoded payload, so the
// stream player loads them by URL.
type YtdlpResolver struct {
	search *ytsearch.Client
}

// NewYtdlpResolver creates the resolver, downloading the yt-dlp binary on
// first use.
func NewYtdlpResolver() *YtdlpResolver {
	ytdlpInstallOnce.Do(func() {
		ytdlp.MustInstall(context.TODO(), nil)
	})
	return &YtdlpResolver{search: ytsearch.NewClient(nil)}
}

// Resolve loads the songs behind a URL or search query. Search queries
// resolve to the best single match; playlist URLs expand to every entry.
func (r *YtdlpResolver) Resolve(ctx context.Context, query string, opts ports.ResolveOptions) (*ports.ResolveResult, error) {
	url := query
	if !isURL(query) {
		found, err := r.searchFirst(ctx, query)
		if err != nil {
			return nil, err
		}
		url = found
	}

	if strings.Contains(url, "list=") {
		playlist, err := r.resolvePlaylist(ctx, url, opts)
		if err != nil {
			return nil, err
		}
		return &ports.ResolveResult{Playlist: playlist}, nil
	}

	song, err := r.resolveSong(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	return &ports.ResolveResult{Song: song}, nil
}

// FindRelated searches for songs similar to the given one, excluding the
// song itself.
func (r *YtdlpResolver) FindRelated(ctx context.Context, song *domain.Song) ([]domain.RelatedSong, error) {
	query := song.Title
	if song.Uploader != "" {
		query += " " + song.Uploader
	}

	result, err := r.search.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: searching related songs: %v", domain.ErrUpstream, err)
	}

	related := make([]domain.RelatedSong, 0, maxRelatedSongs)
	for _, v := range result.Results {
		if domain.SongID(v.VideoID) == song.ID {
			continue
		}
		related = append(related, domain.RelatedSong{
			ID:    domain.SongID(v.VideoID),
			URL:   "https://www.youtube.com/watch?v=" + v.VideoID,
			Title: v.Title,
		})
		if len(related) == maxRelatedSongs {
			break
		}
	}
	return related, nil
}

func (r *YtdlpResolver) searchFirst(ctx context.Context, query string) (string, error) {
	result, err := r.search.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: searching %q: %v", domain.ErrUpstream, query, err)
	}
	if len(result.Results) == 0 {
		return "", fmt.Errorf("%w: no results for %q", domain.ErrNotFound, query)
	}
	return "https://www.youtube.com/watch?v=" + result.Results[0].VideoID, nil
}

// resolveSong reads a single video's metadata without downloading it.
func (r *YtdlpResolver) resolveSong(ctx context.Context, url string, opts ports.ResolveOptions) (*domain.Song, error) {
	res, err := ytdlp.New().
		SkipDownload().
		NoWarnings().
		Print("%(id)s\t%(title)s\t%(uploader)s\t%(duration)s\t%(is_live)s\t%(thumbnail)s\t%(webpage_url)s").
		Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: yt-dlp metadata fetch for %s: %v", domain.ErrUpstream, url, err)
	}

	line := strings.TrimSpace(res.Stdout)
	fields := strings.Split(line, "\t")
	if len(fields) < 7 {
		return nil, fmt.Errorf("%w: unexpected yt-dlp output for %s", domain.ErrUpstream, url)
	}

	song := &domain.Song{
		ID:        domain.SongID(fields[0]),
		Title:     fields[1],
		Uploader:  printedString(fields[2]),
		Duration:  printedDuration(fields[3]),
		IsStream:  fields[4] == "True",
		Thumbnail: printedString(fields[5]),
		URL:       fields[6],
		Source:    "youtube",
	}
	song.StampRequester(opts.RequesterID, opts.RequesterName, opts.Metadata)
	return song, nil
}

// resolvePlaylist expands a playlist URL with a flat extraction, one
// lightweight entry per song.
func (r *YtdlpResolver) resolvePlaylist(ctx context.Context, url string, opts ports.ResolveOptions) (*domain.Playlist, error) {
	res, err := ytdlp.New().
		FlatPlaylist().
		DumpJSON().
		NoWarnings().
		Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: yt-dlp playlist fetch for %s: %v", domain.ErrUpstream, url, err)
	}

	infos, err := res.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("%w: parsing yt-dlp playlist output for %s: %v", domain.ErrUpstream, url, err)
	}
	if len(infos) == 0 || infos[0] == nil {
		return nil, fmt.Errorf("%w: empty playlist info for %s", domain.ErrNotFound, url)
	}

	info := infos[0]
	songs := make([]*domain.Song, 0, len(info.Entries))
	for _, entry := range info.Entries {
		if entry == nil || entry.ID == "" {
			continue
		}
		song := &domain.Song{
			ID:       domain.SongID(entry.ID),
			URL:      "https://www.youtube.com/watch?v=" + entry.ID,
			Title:    strPtr(entry.Title),
			Uploader: strPtr(entry.Uploader),
			Duration: floatSeconds(entry.Duration),
			IsStream: boolPtr(entry.IsLive),
			Source:   "youtube",
		}
		song.StampRequester(opts.RequesterID, opts.RequesterName, opts.Metadata)
		songs = append(songs, song)
	}
	if len(songs) == 0 {
		return nil, fmt.Errorf("%w: playlist has no playable entries", domain.ErrEmptyCollection)
	}

	return &domain.Playlist{
		Name:          strPtr(info.Title),
		URL:           url,
		Source:        "youtube",
		Songs:         songs,
		RequesterID:   opts.RequesterID,
		RequesterName: opts.RequesterName,
	}, nil
}

// printedString normalizes yt-dlp's "NA" placeholder to an empty string.
func printedString(s string) string {
	if s == "NA" {
		return ""
	}
	return s
}

// printedDuration parses yt-dlp's printed duration, which is a second
// count that may be fractional or "NA" for live streams.
func printedDuration(s string) time.Duration {
	if s == "" || s == "NA" {
		return 0
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func strPtr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatSeconds(p *float64) time.Duration {
	if p == nil {
		return 0
	}
	return time.Duration(*p * float64(time.Second))
}

func boolPtr(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

// Ensure YtdlpResolver implements the port interfaces.
var (
	_ ports.SongResolver    = (*YtdlpResolver)(nil)
	_ ports.RelatedProvider = (*YtdlpResolver)(nil)
)
