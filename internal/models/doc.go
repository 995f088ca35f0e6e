// Package models defines domain entities for the streamboard web service.
//
// The package contains two categories of types:
//
// 1. Persistent entities backed by the SQLite store:
//   - [User] : local accounts with role-based access and an optional Spotify link
//
// 2. Session snapshots carried in the signed cookie:
//   - [SessionUser] : the {id, username, role} view of the signed-in account
//
// Catalog data (artists, albums, tracks, playlists) never touches the store;
// those types live in internal/services as Spotify response mappings.
package models
