package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/avagyan/streamboard/internal/models"
	"github.com/avagyan/streamboard/internal/shared"
)

// AdminDashboard renders the admin landing page.
func (a *App) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := a.sessions.Current(r)
	a.render(w, http.StatusOK, "admin/dashboard", map[string]any{"User": user})
}

// AdminUsers lists the user directory.
func (a *App) AdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List()
	if err != nil {
		a.renderError(w, http.StatusInternalServerError, "Something went wrong, try again later", err)
		return
	}
	a.render(w, http.StatusOK, "admin/users", map[string]any{"Users": users})
}

// AdminAddUser creates an account from the add-user form. Duplicate
// emails re-render the directory with a message instead of failing opaquely.
func (a *App) AdminAddUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.render(w, http.StatusBadRequest, "error", map[string]any{"Message": "Malformed form submission"})
		return
	}

	username := r.PostFormValue("username")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	role := r.PostFormValue("role")
	if username == "" || email == "" || password == "" {
		a.render(w, http.StatusBadRequest, "error", map[string]any{"Message": "Username, email, and password are required"})
		return
	}
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{Username: username, Role: role, Email: email}
	if err := a.users.Create(user, password); err != nil {
		switch {
		case errors.Is(err, shared.ErrEmailTaken):
			a.renderUsersWithError(w, http.StatusConflict, "That email is already registered")
		case errors.Is(err, shared.ErrInvalidInput):
			a.render(w, http.StatusBadRequest, "error", map[string]any{"Message": "Invalid user details"})
		default:
			a.renderError(w, http.StatusInternalServerError, "Something went wrong, try again later", err)
		}
		return
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// AdminEditUser applies a partial update to the user named by the
// userId form field. Only supplied fields change; a supplied password is
// re-hashed by the store.
func (a *App) AdminEditUser(w http.ResponseWriter, r *http.Request) {
	id, ok := a.formUserID(w, r)
	if !ok {
		return
	}

	var changes models.UserChanges
	if v := r.PostFormValue("username"); v != "" {
		changes.Username = &v
	}
	if v := r.PostFormValue("role"); v != "" {
		changes.Role = &v
	}
	if v := r.PostFormValue("email"); v != "" {
		changes.Email = &v
	}
	if v := r.PostFormValue("password"); v != "" {
		changes.Password = &v
	}

	if err := a.users.Update(id, changes); err != nil {
		switch {
		case errors.Is(err, shared.ErrUserNotFound):
			a.render(w, http.StatusNotFound, "error", map[string]any{"Message": "No such user"})
		case errors.Is(err, shared.ErrEmailTaken):
			a.renderUsersWithError(w, http.StatusConflict, "That email is already registered")
		case errors.Is(err, shared.ErrInvalidInput):
			a.render(w, http.StatusBadRequest, "error", map[string]any{"Message": "Invalid user details"})
		default:
			a.renderError(w, http.StatusInternalServerError, "Something went wrong, try again later", err)
		}
		return
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// AdminDeleteUser removes the user named by the userId form field.
func (a *App) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := a.formUserID(w, r)
	if !ok {
		return
	}

	if err := a.users.Delete(id); err != nil {
		if errors.Is(err, shared.ErrUserNotFound) {
			a.render(w, http.StatusNotFound, "error", map[string]any{"Message": "No such user"})
			return
		}
		a.renderError(w, http.StatusInternalServerError, "Something went wrong, try again later", err)
		return
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// formUserID parses the numeric userId form field, responding with 400 on
// missing or malformed values.
func (a *App) formUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if err := r.ParseForm(); err != nil {
		a.render(w, http.StatusBadRequest, "error", map[string]any{"Message": "Malformed form submission"})
		return 0, false
	}

	id, err := strconv.ParseInt(r.PostFormValue("userId"), 10, 64)
	if err != nil {
		a.render(w, http.StatusBadRequest, "error", map[string]any{"Message": "A numeric userId is required"})
		return 0, false
	}

	return id, true
}

// renderUsersWithError re-renders the directory with an inline message.
func (a *App) renderUsersWithError(w http.ResponseWriter, status int, message string) {
	users, err := a.users.List()
	if err != nil {
		a.renderError(w, http.StatusInternalServerError, "Something went wrong, try again later", err)
		return
	}
	a.render(w, status, "admin/users", map[string]any{"Users": users, "Error": message})
}
