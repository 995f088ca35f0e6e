package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/avagyan/streamboard/internal/models"
	"github.com/avagyan/streamboard/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

// setupTestDB creates an in-memory SQLite database with migrations applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func mustCreate(t *testing.T, repo *UserRepository, username, role, email, password string) *models.User {
	t.Helper()

	user := &models.User{Username: username, Role: role, Email: email}
	if err := repo.Create(user, password); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func TestUserRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		user := mustCreate(t, repo, "ani", "user", "ani@example.com", "secret123")

		if user.ID == 0 {
			t.Error("user ID should be set after creation")
		}
		if user.PasswordHash == "secret123" || user.PasswordHash == "" {
			t.Error("password must be stored as a hash, never plaintext")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")); err != nil {
			t.Errorf("stored hash should verify against the original password: %v", err)
		}
	})

	t.Run("Create Rejects Duplicate Email", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		mustCreate(t, repo, "first", "user", "dup@example.com", "secret123")

		second := &models.User{Username: "second", Role: "user", Email: "dup@example.com"}
		err := repo.Create(second, "another")
		if !errors.Is(err, shared.ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}

		users, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(users) != 1 {
			t.Errorf("expected exactly one row for the email, got %d", len(users))
		}
	})

	t.Run("Create Rejects Missing Password", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		user := &models.User{Username: "ani", Role: "user", Email: "ani@example.com"}
		if err := repo.Create(user, ""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		created := mustCreate(t, repo, "ani", "admin", "ani@example.com", "secret123")

		retrieved, err := repo.Get(created.ID)
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if retrieved.Username != "ani" || retrieved.Role != "admin" || retrieved.Email != "ani@example.com" {
			t.Errorf("retrieved user does not match created user: %+v", retrieved)
		}

		if _, err := repo.Get(created.ID + 100); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound for missing id, got %v", err)
		}
	})

	t.Run("GetByUsername", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		created := mustCreate(t, repo, "ani", "user", "ani@example.com", "secret123")

		retrieved, err := repo.GetByUsername("ani")
		if err != nil {
			t.Fatalf("failed to get user by username: %v", err)
		}
		if retrieved.ID != created.ID {
			t.Errorf("expected id %d, got %d", created.ID, retrieved.ID)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		created := mustCreate(t, repo, "ani", "user", "ani@example.com", "secret123")

		role := "admin"
		username := "ani2"
		if err := repo.Update(created.ID, models.UserChanges{Username: &username, Role: &role}); err != nil {
			t.Fatalf("failed to update user: %v", err)
		}

		updated, err := repo.Get(created.ID)
		if err != nil {
			t.Fatalf("failed to get updated user: %v", err)
		}
		if updated.Username != "ani2" || updated.Role != "admin" {
			t.Errorf("update not applied: %+v", updated)
		}
		if updated.Email != "ani@example.com" {
			t.Errorf("untouched field changed: %s", updated.Email)
		}
	})

	t.Run("Update Rehashes Password", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		created := mustCreate(t, repo, "ani", "user", "ani@example.com", "secret123")

		password := "newpassword"
		if err := repo.Update(created.ID, models.UserChanges{Password: &password}); err != nil {
			t.Fatalf("failed to update password: %v", err)
		}

		if _, err := repo.Authenticate("ani", "newpassword"); err != nil {
			t.Errorf("new password should authenticate: %v", err)
		}
		if _, err := repo.Authenticate("ani", "secret123"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("old password should no longer authenticate, got %v", err)
		}
	})

	t.Run("Update Missing User", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		username := "ghost"
		err := repo.Update(42, models.UserChanges{Username: &username})
		if !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		created := mustCreate(t, repo, "ani", "user", "ani@example.com", "secret123")

		if err := repo.Delete(created.ID); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}
		if _, err := repo.Get(created.ID); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound after delete, got %v", err)
		}
		if err := repo.Delete(created.ID); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound for double delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		mustCreate(t, repo, "a", "user", "a@example.com", "secret123")
		mustCreate(t, repo, "b", "admin", "b@example.com", "secret123")

		users, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("expected 2 users, got %d", len(users))
		}
		if users[0].Username != "a" || users[1].Username != "b" {
			t.Errorf("expected id ordering, got %s, %s", users[0].Username, users[1].Username)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	created := mustCreate(t, repo, "ani", "admin", "ani@example.com", "correct horse")

	t.Run("Valid Credentials", func(t *testing.T) {
		user, err := repo.Authenticate("ani", "correct horse")
		if err != nil {
			t.Fatalf("expected successful authentication, got %v", err)
		}
		if user.ID != created.ID || user.Role != "admin" {
			t.Errorf("authenticated user mismatch: %+v", user)
		}
	})

	t.Run("Wrong Password", func(t *testing.T) {
		if _, err := repo.Authenticate("ani", "wrong"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("Unknown Username", func(t *testing.T) {
		if _, err := repo.Authenticate("nobody", "correct horse"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})
}

func TestEnsureAdmin(t *testing.T) {
	t.Run("Creates Bootstrap Admin", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		created, err := repo.EnsureAdmin("admin", "admin@example.com", "bootstrap")
		if err != nil {
			t.Fatalf("EnsureAdmin failed: %v", err)
		}
		if !created {
			t.Error("expected bootstrap admin to be created on empty store")
		}

		admin, err := repo.GetByUsername("admin")
		if err != nil {
			t.Fatalf("bootstrap admin not found: %v", err)
		}
		if !admin.IsAdmin() {
			t.Errorf("expected admin role, got %s", admin.Role)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		if _, err := repo.EnsureAdmin("admin", "admin@example.com", "bootstrap"); err != nil {
			t.Fatalf("first EnsureAdmin failed: %v", err)
		}
		created, err := repo.EnsureAdmin("admin", "admin@example.com", "bootstrap")
		if err != nil {
			t.Fatalf("second EnsureAdmin failed: %v", err)
		}
		if created {
			t.Error("second EnsureAdmin should not create a duplicate")
		}

		users, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(users) != 1 {
			t.Errorf("expected exactly one user, got %d", len(users))
		}
	})
}

func TestFindOrCreateSpotifyUser(t *testing.T) {
	t.Run("Provisions New User", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		user, err := repo.FindOrCreateSpotifyUser("sp123", "Ani", "ani@example.com")
		if err != nil {
			t.Fatalf("failed to provision user: %v", err)
		}
		if user.Role != models.RoleUser {
			t.Errorf("provisioned user should be unprivileged, got %s", user.Role)
		}
		if user.SpotifyID != "sp123" {
			t.Errorf("expected spotify id link, got %q", user.SpotifyID)
		}
	})

	t.Run("Finds Existing Link", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		first, err := repo.FindOrCreateSpotifyUser("sp123", "Ani", "ani@example.com")
		if err != nil {
			t.Fatalf("failed to provision user: %v", err)
		}
		second, err := repo.FindOrCreateSpotifyUser("sp123", "Ani", "ani@example.com")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("expected same account, got %d and %d", first.ID, second.ID)
		}
	})

	t.Run("Links By Email", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		existing := mustCreate(t, repo, "ani", "user", "ani@example.com", "secret123")

		linked, err := repo.FindOrCreateSpotifyUser("sp999", "Ani", "ani@example.com")
		if err != nil {
			t.Fatalf("failed to link account: %v", err)
		}
		if linked.ID != existing.ID {
			t.Errorf("expected link to existing account %d, got %d", existing.ID, linked.ID)
		}
		if linked.SpotifyID != "sp999" {
			t.Errorf("expected spotify id recorded, got %q", linked.SpotifyID)
		}
	})

	t.Run("Placeholder Email When Profile Omits One", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		user, err := repo.FindOrCreateSpotifyUser("sp777", "", "")
		if err != nil {
			t.Fatalf("failed to provision user: %v", err)
		}
		if user.Email == "" {
			t.Error("expected a placeholder email")
		}
		if user.Username != "sp777" {
			t.Errorf("expected spotify id as fallback username, got %q", user.Username)
		}
	})
}
