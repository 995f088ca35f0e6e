package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/avagyan/streamboard/internal/models"
	"github.com/avagyan/streamboard/internal/repositories"
	"github.com/avagyan/streamboard/internal/shared"
)

func mustCreateUser(t *testing.T, users *repositories.UserRepository, username, role, email, password string) *models.User {
	t.Helper()

	user := &models.User{Username: username, Role: role, Email: email}
	if err := users.Create(user, password); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func TestAdminAddUser(t *testing.T) {
	app, users := newTestApp(t, nil)
	seedAdmin(t, users)
	router := app.Router()
	cookies := loginAs(t, router, "admin", "bootstrap-pass")

	t.Run("Creates User", func(t *testing.T) {
		rec := postForm(router, "/admin/add-user", url.Values{
			"username": {"ani"},
			"email":    {"ani@example.com"},
			"password": {"secret123"},
		}, cookies)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected redirect after create, got %d", rec.Code)
		}

		created, err := users.GetByUsername("ani")
		if err != nil {
			t.Fatalf("created user not found: %v", err)
		}
		if created.Role != models.RoleUser {
			t.Errorf("expected default role user, got %s", created.Role)
		}
	})

	t.Run("Admin Role", func(t *testing.T) {
		rec := postForm(router, "/admin/add-user", url.Values{
			"username": {"second-admin"},
			"email":    {"second@example.com"},
			"password": {"secret123"},
			"role":     {"admin"},
		}, cookies)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected redirect, got %d", rec.Code)
		}

		created, err := users.GetByUsername("second-admin")
		if err != nil {
			t.Fatalf("created user not found: %v", err)
		}
		if !created.IsAdmin() {
			t.Error("expected admin role to be stored")
		}
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		rec := postForm(router, "/admin/add-user", url.Values{
			"username": {"other"},
			"email":    {"ani@example.com"},
			"password": {"secret123"},
		}, cookies)
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409 for duplicate email, got %d", rec.Code)
		}
	})

	t.Run("Missing Fields", func(t *testing.T) {
		rec := postForm(router, "/admin/add-user", url.Values{
			"username": {"incomplete"},
		}, cookies)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAdminEditUser(t *testing.T) {
	app, users := newTestApp(t, nil)
	seedAdmin(t, users)
	target := mustCreateUser(t, users, "ani", "user", "ani@example.com", "secret123")
	router := app.Router()
	cookies := loginAs(t, router, "admin", "bootstrap-pass")

	t.Run("Updates Provided Fields", func(t *testing.T) {
		rec := postForm(router, "/admin/edit-user", url.Values{
			"userId": {strconv.FormatInt(target.ID, 10)},
			"email":  {"ani.new@example.com"},
			"role":   {"admin"},
		}, cookies)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected redirect, got %d", rec.Code)
		}

		updated, err := users.Get(target.ID)
		if err != nil {
			t.Fatalf("failed to reload user: %v", err)
		}
		if updated.Email != "ani.new@example.com" {
			t.Errorf("email not updated, got %s", updated.Email)
		}
		if updated.Role != models.RoleAdmin {
			t.Errorf("role not updated, got %s", updated.Role)
		}
		if updated.Username != "ani" {
			t.Errorf("untouched field changed, got username %s", updated.Username)
		}
	})

	t.Run("Password Change Takes Effect", func(t *testing.T) {
		rec := postForm(router, "/admin/edit-user", url.Values{
			"userId":   {strconv.FormatInt(target.ID, 10)},
			"password": {"rotated456"},
		}, cookies)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected redirect, got %d", rec.Code)
		}

		if _, err := users.Authenticate("ani", "rotated456"); err != nil {
			t.Errorf("new password rejected: %v", err)
		}
		if _, err := users.Authenticate("ani", "secret123"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("old password should be rejected, got %v", err)
		}
	})

	t.Run("Unknown User", func(t *testing.T) {
		rec := postForm(router, "/admin/edit-user", url.Values{
			"userId": {"99999"},
			"email":  {"ghost@example.com"},
		}, cookies)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Malformed ID", func(t *testing.T) {
		rec := postForm(router, "/admin/edit-user", url.Values{
			"userId": {"not-a-number"},
			"email":  {"x@example.com"},
		}, cookies)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAdminDeleteUser(t *testing.T) {
	app, users := newTestApp(t, nil)
	seedAdmin(t, users)
	router := app.Router()
	cookies := loginAs(t, router, "admin", "bootstrap-pass")

	t.Run("Deletes Selected User", func(t *testing.T) {
		target := mustCreateUser(t, users, "doomed", "user", "doomed@example.com", "secret123")

		rec := postForm(router, "/admin/delete-user", url.Values{
			"userId": {strconv.FormatInt(target.ID, 10)},
		}, cookies)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected redirect, got %d", rec.Code)
		}

		if _, err := users.Get(target.ID); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("user should be gone, got %v", err)
		}
	})

	t.Run("Only Selected User Is Removed", func(t *testing.T) {
		keep := mustCreateUser(t, users, "keeper", "user", "keeper@example.com", "secret123")
		target := mustCreateUser(t, users, "gone", "user", "gone@example.com", "secret123")

		postForm(router, "/admin/delete-user", url.Values{
			"userId": {strconv.FormatInt(target.ID, 10)},
		}, cookies)

		if _, err := users.Get(keep.ID); err != nil {
			t.Errorf("unrelated user affected by delete: %v", err)
		}
	})

	t.Run("Unknown User", func(t *testing.T) {
		rec := postForm(router, "/admin/delete-user", url.Values{
			"userId": {"99999"},
		}, cookies)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Missing ID", func(t *testing.T) {
		rec := postForm(router, "/admin/delete-user", url.Values{}, cookies)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAdminUsersPage(t *testing.T) {
	app, users := newTestApp(t, nil)
	seedAdmin(t, users)
	mustCreateUser(t, users, "ani", "user", "ani@example.com", "secret123")
	router := app.Router()
	cookies := loginAs(t, router, "admin", "bootstrap-pass")

	rec := get(router, "/admin/users", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{"admin", "ani", "ani@example.com"} {
		if !strings.Contains(body, want) {
			t.Errorf("user listing missing %q", want)
		}
	}
}
