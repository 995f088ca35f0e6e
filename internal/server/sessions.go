package server

import (
	"net/http"
	"time"

	"github.com/avagyan/streamboard/internal/models"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
)

const (
	sessionName   = "streamboard_session"
	sessionMaxAge = 7 * 24 * 60 * 60
)

// Session value keys. Values are gob-encoded by the cookie store, so only
// plain types are stored.
const (
	keyUserID       = "user_id"
	keyUsername     = "username"
	keyRole         = "role"
	keyOAuthState   = "oauth_state"
	keyAccessToken  = "spotify_access_token"
	keyRefreshToken = "spotify_refresh_token"
	keyTokenExpiry  = "spotify_token_expiry"
)

// SessionManager wraps the signed cookie store holding authentication
// state. All reads tolerate missing or tampered cookies by treating the
// request as unauthenticated.
type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager creates a manager signing cookies with secret.
func NewSessionManager(secret string) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// Current returns the authenticated user snapshot, or false when the
// request carries no valid session.
func (m *SessionManager) Current(r *http.Request) (models.SessionUser, bool) {
	sess, err := m.store.Get(r, sessionName)
	if err != nil {
		return models.SessionUser{}, false
	}

	id, ok := sess.Values[keyUserID].(int64)
	if !ok {
		return models.SessionUser{}, false
	}
	username, _ := sess.Values[keyUsername].(string)
	role, _ := sess.Values[keyRole].(string)

	return models.SessionUser{ID: id, Username: username, Role: role}, true
}

// SignIn writes the user snapshot into a fresh session.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, user *models.User) error {
	sess, _ := m.store.Get(r, sessionName)
	sess.Values[keyUserID] = user.ID
	sess.Values[keyUsername] = user.Username
	sess.Values[keyRole] = user.Role
	return sess.Save(r, w)
}

// SignOut destroys the session. Subsequent requests bearing the old
// cookie are treated as unauthenticated.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, sessionName)
	for key := range sess.Values {
		delete(sess.Values, key)
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// SetOAuthState stores the CSRF nonce for the in-flight OAuth flow.
func (m *SessionManager) SetOAuthState(w http.ResponseWriter, r *http.Request, state string) error {
	sess, _ := m.store.Get(r, sessionName)
	sess.Values[keyOAuthState] = state
	return sess.Save(r, w)
}

// ConsumeOAuthState returns the stored nonce and removes it, so a state
// value cannot be replayed across callbacks.
func (m *SessionManager) ConsumeOAuthState(w http.ResponseWriter, r *http.Request) string {
	sess, err := m.store.Get(r, sessionName)
	if err != nil {
		return ""
	}
	state, _ := sess.Values[keyOAuthState].(string)
	delete(sess.Values, keyOAuthState)
	sess.Save(r, w)
	return state
}

// SetSpotifyToken stores the user's Spotify token pair in the session.
func (m *SessionManager) SetSpotifyToken(w http.ResponseWriter, r *http.Request, token *oauth2.Token) error {
	sess, _ := m.store.Get(r, sessionName)
	sess.Values[keyAccessToken] = token.AccessToken
	sess.Values[keyRefreshToken] = token.RefreshToken
	sess.Values[keyTokenExpiry] = token.Expiry.Unix()
	return sess.Save(r, w)
}

// SpotifyToken reconstructs the user's Spotify token from the session, or
// returns false when the user has not completed a Spotify login.
func (m *SessionManager) SpotifyToken(r *http.Request) (*oauth2.Token, bool) {
	sess, err := m.store.Get(r, sessionName)
	if err != nil {
		return nil, false
	}

	access, ok := sess.Values[keyAccessToken].(string)
	if !ok || access == "" {
		return nil, false
	}
	refresh, _ := sess.Values[keyRefreshToken].(string)
	expiry, _ := sess.Values[keyTokenExpiry].(int64)

	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		Expiry:       time.Unix(expiry, 0),
	}, true
}
