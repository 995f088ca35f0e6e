package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/avagyan/streamboard/internal/insights"
	"github.com/avagyan/streamboard/internal/repositories"
	"github.com/avagyan/streamboard/internal/services"
	"github.com/avagyan/streamboard/internal/shared"
	"github.com/avagyan/streamboard/internal/web"
	"github.com/charmbracelet/log"
)

// App wires the HTTP handlers to their dependencies. Construct with
// [NewApp]; all fields are injected, nothing is process-global.
type App struct {
	users    *repositories.UserRepository
	spotify  *services.SpotifyService
	engine   *insights.Engine
	sessions *SessionManager
	renderer *web.Renderer
	logger   *log.Logger
	location *time.Location
}

// AppOpts contains the dependencies for [NewApp].
type AppOpts struct {
	Users    *repositories.UserRepository
	Spotify  *services.SpotifyService
	Engine   *insights.Engine
	Sessions *SessionManager
	Renderer *web.Renderer
	Logger   *log.Logger
	Location *time.Location
}

// NewApp creates the application handler set.
func NewApp(opts AppOpts) (*App, error) {
	if opts.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if opts.Spotify == nil {
		return nil, fmt.Errorf("spotify service is required")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if opts.Renderer == nil {
		renderer, err := web.NewRenderer()
		if err != nil {
			return nil, err
		}
		opts.Renderer = renderer
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Engine == nil {
		opts.Engine = insights.NewEngine(opts.Logger)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &App{
		users:    opts.Users,
		spotify:  opts.Spotify,
		engine:   opts.Engine,
		sessions: opts.Sessions,
		renderer: opts.Renderer,
		logger:   opts.Logger,
		location: opts.Location,
	}, nil
}

// Router builds the full route table. Catalog browsing sits behind
// RequireAuth; the admin subtree behind RequireAdmin; only the login and
// OAuth endpoints are public.
func (a *App) Router() *BasicRouter {
	router := NewBasicRouter()
	router.Use(RequestLogger(a.logger))

	auth := Middleware(a.RequireAuth)
	admin := Middleware(a.RequireAdmin)

	router.HandleFunc(http.MethodGet, "/login", a.GetLogin)
	router.HandleFunc(http.MethodPost, "/login", a.PostLogin)
	router.HandleFunc(http.MethodGet, "/auth/spotify", a.SpotifyLogin)
	router.HandleFunc(http.MethodGet, "/callback", a.SpotifyCallback)
	router.HandleFunc(http.MethodGet, "/logout", a.Logout)

	router.HandleFunc(http.MethodGet, "/{$}", a.Home, auth)
	router.HandleFunc(http.MethodGet, "/artists", a.Search, auth)
	router.HandleFunc(http.MethodGet, "/artists/{id}", a.ArtistByID, auth)
	router.HandleFunc(http.MethodGet, "/albums/{id}", a.ArtistAlbums, auth)
	router.HandleFunc(http.MethodGet, "/tracks/{id}", a.AlbumTracks, auth)
	router.HandleFunc(http.MethodGet, "/playlist/{id}", a.PlaylistByID, auth)
	router.HandleFunc(http.MethodGet, "/getDistinctArtists", a.DistinctArtists, auth)
	router.HandleFunc(http.MethodPost, "/myplaylist", a.MyPlaylist, auth)
	router.HandleFunc(http.MethodPost, "/playlists", a.CreatePlaylist, auth)

	router.HandleFunc(http.MethodGet, "/admin/login", a.GetAdminLogin)
	router.HandleFunc(http.MethodPost, "/admin/login", a.PostAdminLogin)
	router.HandleFunc(http.MethodGet, "/admin/dashboard", a.AdminDashboard, admin)
	router.HandleFunc(http.MethodGet, "/admin/users", a.AdminUsers, admin)
	router.HandleFunc(http.MethodPost, "/admin/add-user", a.AdminAddUser, admin)
	router.HandleFunc(http.MethodPost, "/admin/edit-user", a.AdminEditUser, admin)
	router.HandleFunc(http.MethodPost, "/admin/delete-user", a.AdminDeleteUser, admin)

	return router
}

// render writes the view with the given status, logging render failures
// after the header is already committed.
func (a *App) render(w http.ResponseWriter, status int, view string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := a.renderer.Render(w, view, data); err != nil {
		a.logger.Error("failed to render view", "view", view, "err", err)
	}
}

// renderError logs the underlying error and shows the generic error page.
// No error detail reaches the client.
func (a *App) renderError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		a.logger.Error(message, "err", err)
	}
	a.render(w, status, "error", map[string]any{"Message": message})
}

// userCatalog returns a Spotify client bound to the session's user token,
// or false when the session has no Spotify login.
func (a *App) userCatalog(r *http.Request) (*services.SpotifyService, bool) {
	token, ok := a.sessions.SpotifyToken(r)
	if !ok {
		return nil, false
	}
	return a.spotify.WithToken(token), true
}
