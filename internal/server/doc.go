// Package server provides the HTTP surface of the application: routing,
// session management, access-control middleware, and the route handlers
// for authentication, catalog browsing, playlist insights, and the admin
// user directory.
//
// # Routing
//
// [BasicRouter] wraps [http.ServeMux] using Go 1.22 method patterns
// ("GET /artists/{id}"). Global middleware applies to every route;
// access-control gates are attached per route.
//
// # Sessions
//
// [SessionManager] wraps a gorilla/sessions cookie store signed with the
// configured secret. The session holds the authenticated user snapshot
// plus the Spotify token pair after an OAuth login. Absence of the user
// snapshot means the request is unauthenticated; every gate re-checks it
// on every request.
//
// # Gates
//
// [App.RequireAuth] redirects anonymous requests to the login page.
// [App.RequireAdmin] additionally requires the administrator role,
// redirecting everyone else to the home page. Both are pure checks: they
// never mutate session or user state.
package server
