// Package services implements the Spotify Web API client used by the
// catalog-browsing handlers and the insights engine.
//
// # Authentication modes
//
// [SpotifyService] supports both OAuth2 flows the application needs:
//
//   - Client credentials: an application-level token acquired at startup
//     with [SpotifyService.AuthenticateApp], backing anonymous catalog
//     reads (search, artist, album, playlist lookups).
//   - Authorization code: per-user tokens obtained via
//     [SpotifyService.AuthURL] and [SpotifyService.Exchange], bound to a
//     request-scoped client with [SpotifyService.WithToken] for the
//     endpoints that act on behalf of a user (recently played, the user's
//     playlists, playlist creation).
//
// # Error handling
//
// Every transport or decode failure wraps [shared.ErrAPIRequest]; handlers
// collapse these to a generic "Error fetching data" response and log the
// detail server-side. Requests carry a client timeout so a hung upstream
// call cannot hang a request indefinitely.
//
// # API mappings
//
// Response structs mirror the subset of the Spotify Web API the
// application reads; see https://developer.spotify.com/documentation/web-api.
package services
