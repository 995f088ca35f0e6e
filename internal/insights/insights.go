package insights

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/avagyan/streamboard/internal/services"
	"github.com/avagyan/streamboard/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// Catalog is the subset of the Spotify client the engine depends on.
type Catalog interface {
	Playlist(ctx context.Context, playlistID string) (*services.Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]services.PlaylistTrack, error)
	Artist(ctx context.Context, artistID string) (*services.Artist, error)
	RecentlyPlayed(ctx context.Context, limit int) ([]services.PlayHistory, error)
}

var playlistURLPattern = regexp.MustCompile(`https://open\.spotify\.com/playlist/([a-zA-Z0-9]{22})`)

// PlaylistIDFromURL extracts the 22-character playlist id from an
// open.spotify.com playlist URL, returning "" when the URL does not match.
func PlaylistIDFromURL(raw string) string {
	match := playlistURLPattern.FindStringSubmatch(raw)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// ArtistSummary is one aggregated record of the distinct-artist report.
type ArtistSummary struct {
	ID          string
	Name        string
	ProfileURL  string
	ImageURL    string
	StreamCount int
}

// TodayListening holds the same-day intersection report: every track played
// today, the target playlist, and the plays that appear in it.
type TodayListening struct {
	TodayPlays []services.PlayHistory
	Playlist   *services.Playlist
	Matches    []services.PlayHistory
}

// Engine computes playlist insights. NumWorkers bounds concurrent artist
// lookups and RateLimit caps them in requests per second.
type Engine struct {
	NumWorkers int
	RateLimit  float64

	logger *log.Logger
	now    func() time.Time
}

// NewEngine creates an Engine with default concurrency limits.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		NumWorkers: 5,
		RateLimit:  5.0,
		logger:     logger,
		now:        time.Now,
	}
}

// DistinctArtists aggregates one record per unique artist id across the
// playlist's tracks, in first-seen order. The count increments once per
// occurrence in each track's artist list, so a track with three artists
// contributes one to each. Artists without an id are skipped. Profile
// images are fetched through the bounded worker pool; a failed image fetch
// leaves the image empty rather than failing the report.
func (e *Engine) DistinctArtists(ctx context.Context, catalog Catalog, playlistID string) ([]ArtistSummary, error) {
	items, err := catalog.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist tracks: %w", err)
	}

	byID := make(map[string]*ArtistSummary)
	var order []string

	for _, item := range items {
		for _, artist := range item.Track.Artists {
			if artist.ID == "" {
				continue
			}
			summary, seen := byID[artist.ID]
			if !seen {
				summary = &ArtistSummary{
					ID:         artist.ID,
					Name:       artist.Name,
					ProfileURL: artist.ExternalURLs.Spotify,
				}
				byID[artist.ID] = summary
				order = append(order, artist.ID)
			}
			summary.StreamCount++
		}
	}

	if err := e.fetchImages(ctx, catalog, byID, order); err != nil {
		return nil, err
	}

	summaries := make([]ArtistSummary, 0, len(order))
	for _, id := range order {
		summaries = append(summaries, *byID[id])
	}

	return summaries, nil
}

// fetchImages fills ImageURL for each summary using NumWorkers concurrent
// lookups gated by a rate limiter. Each worker writes only its own artist's
// record, so no locking is needed around the map values.
func (e *Engine) fetchImages(ctx context.Context, catalog Catalog, byID map[string]*ArtistSummary, order []string) error {
	workers := e.NumWorkers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(order) {
		workers = len(order)
	}
	if workers == 0 {
		return nil
	}

	limiter := rate.NewLimiter(rate.Limit(e.RateLimit), 1)
	jobs := make(chan string, len(order))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				artist, err := catalog.Artist(ctx, id)
				if err != nil {
					e.logger.Warn("failed to fetch artist details", "artist", id, "err", err)
					continue
				}
				if len(artist.Images) > 0 {
					byID[id].ImageURL = artist.Images[0].URL
				}
			}
		}()
	}

	for _, id := range order {
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	return ctx.Err()
}

// TodayListening filters the user's recently-played tracks to the current
// calendar day in loc and intersects them with the playlist's track ids.
func (e *Engine) TodayListening(ctx context.Context, catalog Catalog, playlistID string, loc *time.Location) (*TodayListening, error) {
	if loc == nil {
		loc = time.UTC
	}

	recent, err := catalog.RecentlyPlayed(ctx, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recently played: %w", err)
	}

	playlist, err := catalog.Playlist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist: %w", err)
	}

	todayY, todayM, todayD := e.now().In(loc).Date()

	var todayPlays []services.PlayHistory
	for _, item := range recent {
		y, m, d := item.PlayedAt.In(loc).Date()
		if y == todayY && m == todayM && d == todayD {
			todayPlays = append(todayPlays, item)
		}
	}

	inPlaylist := make(map[string]bool, len(playlist.Tracks.Items))
	for _, item := range playlist.Tracks.Items {
		inPlaylist[item.Track.ID] = true
	}

	var matches []services.PlayHistory
	for _, item := range todayPlays {
		if inPlaylist[item.Track.ID] {
			matches = append(matches, item)
		}
	}

	return &TodayListening{
		TodayPlays: todayPlays,
		Playlist:   playlist,
		Matches:    matches,
	}, nil
}
