package server

import (
	"net/http"
	"strings"

	"github.com/avagyan/streamboard/internal/insights"
)

// DistinctArtists renders the distinct-artist aggregation for the
// playlist named by the playlistUrl query parameter.
func (a *App) DistinctArtists(w http.ResponseWriter, r *http.Request) {
	playlistID := insights.PlaylistIDFromURL(r.URL.Query().Get("playlistUrl"))
	if playlistID == "" {
		a.render(w, http.StatusBadRequest, "error", map[string]any{"Message": "Invalid playlist URL"})
		return
	}

	artists, err := a.engine.DistinctArtists(r.Context(), a.spotify, playlistID)
	if err != nil {
		a.renderError(w, http.StatusInternalServerError, fetchErrorMessage, err)
		return
	}

	a.render(w, http.StatusOK, "distinct_artists", map[string]any{"Artists": artists})
}

// MyPlaylist renders the same-day listening intersection. The
// recently-played feed needs a user token, so sessions without a Spotify
// login are sent through the OAuth flow first.
func (a *App) MyPlaylist(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.render(w, http.StatusBadRequest, "error", map[string]any{"Message": "Malformed form submission"})
		return
	}

	playlistID := insights.PlaylistIDFromURL(r.PostFormValue("playlistUrl"))
	if playlistID == "" {
		a.render(w, http.StatusBadRequest, "error", map[string]any{"Message": "Invalid playlist URL"})
		return
	}

	catalog, ok := a.userCatalog(r)
	if !ok {
		http.Redirect(w, r, "/auth/spotify", http.StatusSeeOther)
		return
	}

	result, err := a.engine.TodayListening(r.Context(), catalog, playlistID, a.location)
	if err != nil {
		a.renderError(w, http.StatusInternalServerError, fetchErrorMessage, err)
		return
	}

	a.render(w, http.StatusOK, "myplaylist", map[string]any{"Result": result})
}

// CreatePlaylist creates a playlist on the user's Spotify account and
// optionally seeds it with the submitted track URIs.
func (a *App) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.render(w, http.StatusBadRequest, "error", map[string]any{"Message": "Malformed form submission"})
		return
	}

	name := r.PostFormValue("name")
	if name == "" {
		a.render(w, http.StatusBadRequest, "error", map[string]any{"Message": "Playlist name is required"})
		return
	}

	catalog, ok := a.userCatalog(r)
	if !ok {
		http.Redirect(w, r, "/auth/spotify", http.StatusSeeOther)
		return
	}

	profile, err := catalog.Profile(r.Context())
	if err != nil {
		a.renderError(w, http.StatusInternalServerError, fetchErrorMessage, err)
		return
	}

	playlist, err := catalog.CreatePlaylist(r.Context(), profile.ID, name, r.PostFormValue("description"), false)
	if err != nil {
		a.renderError(w, http.StatusInternalServerError, fetchErrorMessage, err)
		return
	}

	if uris := strings.Fields(r.PostFormValue("trackUris")); len(uris) > 0 {
		if err := catalog.AddTracks(r.Context(), playlist.ID, uris); err != nil {
			a.renderError(w, http.StatusInternalServerError, fetchErrorMessage, err)
			return
		}
	}

	http.Redirect(w, r, "/playlist/"+playlist.ID, http.StatusSeeOther)
}
