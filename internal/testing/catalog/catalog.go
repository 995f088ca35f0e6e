// package catalog contains shared testing doubles for catalog operations.
package catalog

import (
	"context"

	"github.com/avagyan/streamboard/internal/services"
)

// MockCatalog is a configurable test double for the catalog operations the
// insights engine depends on.
type MockCatalog struct {
	PlaylistFn       func(ctx context.Context, id string) (*services.Playlist, error)
	PlaylistTracksFn func(ctx context.Context, id string) ([]services.PlaylistTrack, error)
	ArtistFn         func(ctx context.Context, id string) (*services.Artist, error)
	RecentlyPlayedFn func(ctx context.Context, limit int) ([]services.PlayHistory, error)
}

func (m *MockCatalog) Playlist(ctx context.Context, id string) (*services.Playlist, error) {
	return m.PlaylistFn(ctx, id)
}

func (m *MockCatalog) PlaylistTracks(ctx context.Context, id string) ([]services.PlaylistTrack, error) {
	return m.PlaylistTracksFn(ctx, id)
}

func (m *MockCatalog) Artist(ctx context.Context, id string) (*services.Artist, error) {
	return m.ArtistFn(ctx, id)
}

func (m *MockCatalog) RecentlyPlayed(ctx context.Context, limit int) ([]services.PlayHistory, error) {
	return m.RecentlyPlayedFn(ctx, limit)
}
