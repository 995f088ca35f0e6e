package server

import (
	"errors"
	"net/http"

	"github.com/avagyan/streamboard/internal/shared"
)

// GetLogin renders the login form, skipping straight home for requests
// that already carry a session.
func (a *App) GetLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.sessions.Current(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.render(w, http.StatusOK, "login", map[string]any{})
}

// PostLogin validates the submitted credentials and establishes a session.
// Missing fields fail with 400 before the store is touched; bad
// credentials with 401 and no session.
func (a *App) PostLogin(w http.ResponseWriter, r *http.Request) {
	a.login(w, r, "login", "/")
}

// GetAdminLogin renders the admin login form.
func (a *App) GetAdminLogin(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "admin/login", map[string]any{})
}

// PostAdminLogin authenticates against the same store as the regular
// login; the admin gate on the dashboard enforces the role.
func (a *App) PostAdminLogin(w http.ResponseWriter, r *http.Request) {
	a.login(w, r, "admin/login", "/admin/dashboard")
}

func (a *App) login(w http.ResponseWriter, r *http.Request, view, target string) {
	if err := r.ParseForm(); err != nil {
		a.render(w, http.StatusBadRequest, view, map[string]any{"Error": "Malformed form submission"})
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		a.render(w, http.StatusBadRequest, view, map[string]any{"Error": "Username and password are required"})
		return
	}

	user, err := a.users.Authenticate(username, password)
	if err != nil {
		if errors.Is(err, shared.ErrAuthFailed) {
			a.render(w, http.StatusUnauthorized, view, map[string]any{"Error": "Invalid username or password"})
			return
		}
		a.renderError(w, http.StatusInternalServerError, "Something went wrong, try again later", err)
		return
	}

	if err := a.sessions.SignIn(w, r, user); err != nil {
		a.renderError(w, http.StatusInternalServerError, "Something went wrong, try again later", err)
		return
	}

	if user.IsAdmin() {
		target = "/admin/dashboard"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SpotifyLogin starts the authorization-code flow, parking a state nonce
// in the session for the callback to verify.
func (a *App) SpotifyLogin(w http.ResponseWriter, r *http.Request) {
	state := shared.GenerateToken()
	if err := a.sessions.SetOAuthState(w, r, state); err != nil {
		a.renderError(w, http.StatusInternalServerError, "Something went wrong, try again later", err)
		return
	}
	http.Redirect(w, r, a.spotify.AuthURL(state), http.StatusSeeOther)
}

// SpotifyCallback completes the authorization-code flow: verifies the
// state nonce, exchanges the code, resolves the local account from the
// Spotify profile, and stores the token pair in the session.
func (a *App) SpotifyCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		a.logger.Warn("spotify authorization denied", "reason", errParam)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	code := query.Get("code")
	if code == "" {
		a.render(w, http.StatusBadRequest, "error", map[string]any{"Message": "Missing authorization code"})
		return
	}

	state := a.sessions.ConsumeOAuthState(w, r)
	if state == "" || state != query.Get("state") {
		a.render(w, http.StatusBadRequest, "error", map[string]any{"Message": "Invalid state parameter"})
		return
	}

	token, err := a.spotify.Exchange(r.Context(), code)
	if err != nil {
		a.renderError(w, http.StatusInternalServerError, "Error authorizing with Spotify", err)
		return
	}

	profile, err := a.spotify.WithToken(token).Profile(r.Context())
	if err != nil {
		a.renderError(w, http.StatusInternalServerError, "Error fetching data", err)
		return
	}

	user, err := a.users.FindOrCreateSpotifyUser(profile.ID, profile.DisplayName, profile.Email)
	if err != nil {
		a.renderError(w, http.StatusInternalServerError, "Something went wrong, try again later", err)
		return
	}

	if err := a.sessions.SignIn(w, r, user); err != nil {
		a.renderError(w, http.StatusInternalServerError, "Something went wrong, try again later", err)
		return
	}
	if err := a.sessions.SetSpotifyToken(w, r, token); err != nil {
		a.renderError(w, http.StatusInternalServerError, "Something went wrong, try again later", err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session and returns to the login page.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.SignOut(w, r); err != nil {
		a.logger.Error("failed to destroy session", "err", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
