package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avagyan/streamboard/internal/models"
	"github.com/avagyan/streamboard/internal/shared"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = "id, username, role, email, password_hash, spotify_id, created_at, updated_at"

// UserRepository persists [models.User] rows in the users table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user, hashing the supplied plaintext password.
// The generated id is written back into user. A duplicate email fails with
// [shared.ErrEmailTaken].
func (r *UserRepository) Create(user *models.User, password string) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", shared.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (username, role, email, password_hash, spotify_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query, user.Username, user.Role, user.Email, user.PasswordHash, nullable(user.SpotifyID), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", shared.ErrEmailTaken, user.Email)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted id: %w", err)
	}
	user.ID = id

	return nil
}

// Get retrieves a user by its numeric id.
func (r *UserRepository) Get(id int64) (*models.User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row, fmt.Sprintf("id %d", id))
}

// GetByUsername retrieves a user by username, the login lookup key.
// When multiple rows share a username, the earliest row wins.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ? ORDER BY id LIMIT 1", username)
	return scanUser(row, username)
}

// GetByEmail retrieves a user by its unique email.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row, email)
}

// GetBySpotifyID retrieves a user by linked Spotify account id.
func (r *UserRepository) GetBySpotifyID(spotifyID string) (*models.User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE spotify_id = ?", spotifyID)
	return scanUser(row, spotifyID)
}

// List retrieves all users ordered by id.
func (r *UserRepository) List() ([]*models.User, error) {
	rows, err := r.db.Query("SELECT " + userColumns + " FROM users ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows, "")
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

// Update applies a partial update to the user identified by id. Supplied
// fields are merged over the existing row; a new password is re-hashed.
// Fails with [shared.ErrUserNotFound] when no row matches.
func (r *UserRepository) Update(id int64, changes models.UserChanges) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now()}

	if changes.Username != nil {
		if strings.TrimSpace(*changes.Username) == "" {
			return fmt.Errorf("%w: username cannot be empty", shared.ErrInvalidInput)
		}
		sets = append(sets, "username = ?")
		args = append(args, *changes.Username)
	}
	if changes.Role != nil {
		if *changes.Role != models.RoleAdmin && *changes.Role != models.RoleUser {
			return fmt.Errorf("%w: invalid role %q", shared.ErrInvalidInput, *changes.Role)
		}
		sets = append(sets, "role = ?")
		args = append(args, *changes.Role)
	}
	if changes.Email != nil {
		if strings.TrimSpace(*changes.Email) == "" {
			return fmt.Errorf("%w: email cannot be empty", shared.ErrInvalidInput)
		}
		sets = append(sets, "email = ?")
		args = append(args, *changes.Email)
	}
	if changes.Password != nil {
		if *changes.Password == "" {
			return fmt.Errorf("%w: password cannot be empty", shared.ErrInvalidInput)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*changes.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		sets = append(sets, "password_hash = ?")
		args = append(args, string(hash))
	}
	if changes.SpotifyID != nil {
		sets = append(sets, "spotify_id = ?")
		args = append(args, nullable(*changes.SpotifyID))
	}

	args = append(args, id)
	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	result, err := r.db.Exec(query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w", shared.ErrEmailTaken)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: id %d", shared.ErrUserNotFound, id)
	}

	return nil
}

// Delete removes the user identified by id.
func (r *UserRepository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: id %d", shared.ErrUserNotFound, id)
	}

	return nil
}

// Authenticate validates a username/password pair against the stored bcrypt
// hash. Unknown usernames and hash mismatches both fail with
// [shared.ErrAuthFailed] so callers cannot distinguish the two.
func (r *UserRepository) Authenticate(username, password string) (*models.User, error) {
	user, err := r.GetByUsername(username)
	if err != nil {
		if errors.Is(err, shared.ErrUserNotFound) {
			return nil, shared.ErrAuthFailed
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrAuthFailed
	}

	return user, nil
}

// EnsureAdmin guarantees at least one administrator row exists, creating
// the configured bootstrap account when absent. Returns true when a new
// admin was created. Safe to call on every startup.
func (r *UserRepository) EnsureAdmin(username, email, password string) (bool, error) {
	var exists bool
	err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE role = ?)", models.RoleAdmin).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for admin: %w", err)
	}
	if exists {
		return false, nil
	}

	admin := &models.User{
		Username: username,
		Role:     models.RoleAdmin,
		Email:    email,
	}
	if err := r.Create(admin, password); err != nil {
		return false, fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	return true, nil
}

// FindOrCreateSpotifyUser resolves a Spotify identity to a local account.
// Matches by linked spotify_id first, then by profile email (linking the
// account), and finally provisions a new unprivileged user with a random
// placeholder password.
func (r *UserRepository) FindOrCreateSpotifyUser(spotifyID, displayName, email string) (*models.User, error) {
	if spotifyID == "" {
		return nil, fmt.Errorf("%w: spotify id is required", shared.ErrInvalidInput)
	}

	user, err := r.GetBySpotifyID(spotifyID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, shared.ErrUserNotFound) {
		return nil, err
	}

	if email != "" {
		if user, err := r.GetByEmail(email); err == nil {
			if err := r.Update(user.ID, models.UserChanges{SpotifyID: &spotifyID}); err != nil {
				return nil, err
			}
			user.SpotifyID = spotifyID
			return user, nil
		} else if !errors.Is(err, shared.ErrUserNotFound) {
			return nil, err
		}
	}

	username := displayName
	if username == "" {
		username = spotifyID
	}
	if email == "" {
		email = spotifyID + "@users.spotify.local"
	}

	user = &models.User{
		Username:  username,
		Role:      models.RoleUser,
		Email:     email,
		SpotifyID: spotifyID,
	}
	if err := r.Create(user, shared.GenerateToken()); err != nil {
		return nil, err
	}

	return user, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanUser.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner, key string) (*models.User, error) {
	var (
		user      models.User
		spotifyID sql.NullString
	)

	err := row.Scan(&user.ID, &user.Username, &user.Role, &user.Email, &user.PasswordHash, &spotifyID, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if spotifyID.Valid {
		user.SpotifyID = spotifyID.String
	}

	return &user, nil
}

// nullable maps an empty string to NULL so the optional spotify_id column
// stays NULL rather than holding empty strings.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
