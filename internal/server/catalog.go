package server

import (
	"net/http"

	"github.com/avagyan/streamboard/internal/services"
)

const fetchErrorMessage = "Error fetching data"

// Home renders the landing page with the current user and, when the
// session carries a Spotify login, their playlists. A missing Spotify
// token is not an error here; the playlist panel is simply omitted.
func (a *App) Home(w http.ResponseWriter, r *http.Request) {
	user, _ := a.sessions.Current(r)

	var playlists []services.SimplePlaylist
	if catalog, ok := a.userCatalog(r); ok {
		var err error
		playlists, err = catalog.UserPlaylists(r.Context(), 10)
		if err != nil {
			a.logger.Warn("failed to fetch user playlists", "err", err)
			playlists = nil
		}
	}

	a.render(w, http.StatusOK, "home", map[string]any{
		"User":      user,
		"Playlists": playlists,
	})
}

// Search handles /artists?artistName=|trackName=, searching artists when
// artistName is present and tracks otherwise, mirroring the two result
// views. Both parameters absent is a validation error.
func (a *App) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if artistName := query.Get("artistName"); artistName != "" {
		artists, err := a.spotify.SearchArtists(r.Context(), artistName)
		if err != nil {
			a.renderError(w, http.StatusInternalServerError, fetchErrorMessage, err)
			return
		}
		a.render(w, http.StatusOK, "artists", map[string]any{"Artists": artists})
		return
	}

	if trackName := query.Get("trackName"); trackName != "" {
		tracks, err := a.spotify.SearchTracks(r.Context(), trackName)
		if err != nil {
			a.renderError(w, http.StatusInternalServerError, fetchErrorMessage, err)
			return
		}
		a.render(w, http.StatusOK, "tracks", map[string]any{"Tracks": tracks})
		return
	}

	a.render(w, http.StatusBadRequest, "error", map[string]any{"Message": "Provide artistName or trackName"})
}

// ArtistByID renders a single artist's detail.
func (a *App) ArtistByID(w http.ResponseWriter, r *http.Request) {
	artist, err := a.spotify.Artist(r.Context(), r.PathValue("id"))
	if err != nil {
		a.renderError(w, http.StatusInternalServerError, fetchErrorMessage, err)
		return
	}
	a.render(w, http.StatusOK, "artists", map[string]any{"Artists": []services.Artist{*artist}})
}

// ArtistAlbums renders the albums of an artist.
func (a *App) ArtistAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := a.spotify.ArtistAlbums(r.Context(), r.PathValue("id"))
	if err != nil {
		a.renderError(w, http.StatusInternalServerError, fetchErrorMessage, err)
		return
	}
	a.render(w, http.StatusOK, "albums", map[string]any{"Albums": albums})
}

// AlbumTracks renders the tracks of an album.
func (a *App) AlbumTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := a.spotify.AlbumTracks(r.Context(), r.PathValue("id"))
	if err != nil {
		a.renderError(w, http.StatusInternalServerError, fetchErrorMessage, err)
		return
	}
	a.render(w, http.StatusOK, "tracks", map[string]any{"Tracks": tracks})
}

// PlaylistByID renders a playlist with its tracks.
func (a *App) PlaylistByID(w http.ResponseWriter, r *http.Request) {
	playlist, err := a.spotify.Playlist(r.Context(), r.PathValue("id"))
	if err != nil {
		a.renderError(w, http.StatusInternalServerError, fetchErrorMessage, err)
		return
	}
	a.render(w, http.StatusOK, "playlist", map[string]any{"Playlist": playlist})
}
