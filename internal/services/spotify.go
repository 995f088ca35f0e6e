// Spotify Web API client.
//
// Endpoint shapes based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avagyan/streamboard/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	requestTimeout = 15 * time.Second
)

// SpotifyService talks to the Spotify Web API. The zero client is bound to
// the application token acquired with [SpotifyService.AuthenticateApp];
// [SpotifyService.WithToken] derives a copy bound to a user token.
type SpotifyService struct {
	config    *oauth2.Config
	appConfig *clientcredentials.Config
	baseURL   string

	// baseClient carries requests without token injection; httpClient is
	// the active client, possibly wrapped with an oauth2 transport.
	baseClient *http.Client
	httpClient *http.Client
}

// NewSpotifyService creates a Spotify client from the given credentials.
// A nil httpClient selects a default client with a request timeout.
func NewSpotifyService(cfg shared.SpotifyConfig, httpClient *http.Client) (*SpotifyService, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: missing spotify client_id", shared.ErrInvalidConfig)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing spotify client_secret", shared.ErrInvalidConfig)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:5000/callback"
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-read-email",
			"user-read-recently-played",
			"playlist-read-private",
			"playlist-modify-private",
			"playlist-modify-public",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	return &SpotifyService{
		config: config,
		appConfig: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     spotifyTokenURL,
		},
		baseURL:    spotifyBaseURL,
		baseClient: httpClient,
		httpClient: httpClient,
	}, nil
}

// AuthenticateApp acquires an application token via the client-credentials
// grant and binds it to the service's base client. Anonymous catalog reads
// use this token; it carries no user scope.
func (s *SpotifyService) AuthenticateApp(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.baseClient)

	client := s.appConfig.Client(ctx)
	client.Timeout = requestTimeout
	s.httpClient = client

	// Force an initial token fetch so misconfigured credentials fail at
	// startup rather than on the first user request.
	if _, err := s.appConfig.Token(ctx); err != nil {
		return fmt.Errorf("%w: client credentials grant: %v", shared.ErrAuthFailed, err)
	}

	return nil
}

// AuthURL returns the OAuth2 consent URL for the authorization-code flow.
// The state nonce must be validated on the callback.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange swaps an authorization code for an access/refresh token pair.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.baseClient)
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// WithToken returns a copy of the service whose requests carry the given
// user token, refreshing it automatically when expired.
func (s *SpotifyService) WithToken(token *oauth2.Token) *SpotifyService {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, s.baseClient)
	client := s.config.Client(ctx, token)
	client.Timeout = requestTimeout

	bound := *s
	bound.httpClient = client
	return &bound
}

// doRequest performs an authenticated HTTP request against the API,
// JSON-encoding body when present and decoding the response into result.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d from %s", shared.ErrAPIRequest, resp.StatusCode, endpoint)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

// SearchArtists searches artists by name.
func (s *SpotifyService) SearchArtists(ctx context.Context, query string) ([]Artist, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}

	var response struct {
		Artists struct {
			Items []Artist `json:"items"`
		} `json:"artists"`
	}

	endpoint := fmt.Sprintf("/search?type=artist&q=%s", url.QueryEscape(query))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Artists.Items, nil
}

// SearchTracks searches tracks by name.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string) ([]Track, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}

	var response struct {
		Tracks struct {
			Items []Track `json:"items"`
		} `json:"tracks"`
	}

	endpoint := fmt.Sprintf("/search?type=track&q=%s", url.QueryEscape(query))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Tracks.Items, nil
}

// Artist retrieves a single artist by ID.
func (s *SpotifyService) Artist(ctx context.Context, artistID string) (*Artist, error) {
	var artist Artist
	if err := s.doRequest(ctx, http.MethodGet, "/artists/"+url.PathEscape(artistID), nil, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// ArtistAlbums retrieves an artist's albums.
func (s *SpotifyService) ArtistAlbums(ctx context.Context, artistID string) ([]Album, error) {
	var response struct {
		Items []Album `json:"items"`
	}

	endpoint := fmt.Sprintf("/artists/%s/albums", url.PathEscape(artistID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Items, nil
}

// AlbumTracks retrieves the tracks of an album.
func (s *SpotifyService) AlbumTracks(ctx context.Context, albumID string) ([]Track, error) {
	var response struct {
		Items []Track `json:"items"`
	}

	endpoint := fmt.Sprintf("/albums/%s/tracks", url.PathEscape(albumID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Items, nil
}

// Playlist retrieves a playlist by ID, including its first track page.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*Playlist, error) {
	var playlist Playlist
	if err := s.doRequest(ctx, http.MethodGet, "/playlists/"+url.PathEscape(playlistID), nil, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// PlaylistTracks retrieves up to 100 tracks of a playlist.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]PlaylistTrack, error) {
	var response struct {
		Items []PlaylistTrack `json:"items"`
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=100", url.PathEscape(playlistID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Items, nil
}

// RecentlyPlayed retrieves the current user's recently-played tracks.
// Requires a user-bound client (see [SpotifyService.WithToken]).
func (s *SpotifyService) RecentlyPlayed(ctx context.Context, limit int) ([]PlayHistory, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	var response struct {
		Items []PlayHistory `json:"items"`
	}

	endpoint := fmt.Sprintf("/me/player/recently-played?limit=%d", limit)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Items, nil
}

// UserPlaylists retrieves the current user's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit int) ([]SimplePlaylist, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	var response struct {
		Items []SimplePlaylist `json:"items"`
	}

	endpoint := fmt.Sprintf("/me/playlists?limit=%d", limit)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Items, nil
}

// Profile retrieves the current authenticated user's profile.
func (s *SpotifyService) Profile(ctx context.Context) (*UserProfile, error) {
	var profile UserProfile
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreatePlaylist creates a playlist owned by the given user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*Playlist, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}

	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var playlist Playlist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// AddTracks appends track URIs to a playlist (up to 100 per call).
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return fmt.Errorf("%w: no track URIs provided", shared.ErrInvalidInput)
	}
	if len(uris) > 100 {
		return fmt.Errorf("%w: maximum 100 track URIs per request", shared.ErrInvalidInput)
	}

	body := map[string]any{"uris": uris}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}
