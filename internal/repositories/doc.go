// Package repositories implements SQLite persistence for the user directory.
//
// [UserRepository] owns the users table: CRUD by numeric id, login lookups
// by username, Spotify account linking, bcrypt password hashing, and the
// bootstrap guarantee that at least one administrator exists.
//
// The numeric id is the canonical key for every mutating operation; lookup
// by username or email exists only for login and provisioning flows. Email
// uniqueness relies on the table's UNIQUE constraint rather than
// application-level locking, so concurrent conflicting inserts surface as
// [shared.ErrEmailTaken].
package repositories
