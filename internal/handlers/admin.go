package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"

	"github.com/billionaireobi/adaladesigns/internal/api"
	"github.com/billionaireobi/adaladesigns/internal/catalogue"
	"github.com/billionaireobi/adaladesigns/internal/session"
)

// AdminHandler serves the login, dashboard and design-form pages. It is the
// only handler that reads or writes the session token.
type AdminHandler struct {
	API       *api.Client
	Sessions  *session.Store
	Catalogue *catalogue.Cache
	Templates *TemplateCache
}

func (h *AdminHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.Sessions.Token(r); ok {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	h.Templates.Render(w, http.StatusOK, "login.html", map[string]any{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   h.Sessions.Flashes(w, r),
		"Username":  "",
	})
}

func (h *AdminHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	auth, err := h.API.Login(r.Context(), username, password)
	if err != nil {
		status := http.StatusUnauthorized
		msg := api.Message(err, "Login failed")
		var authErr *api.AuthError
		if !errors.As(err, &authErr) {
			slog.Error("Login request failed", "error", err)
			status = http.StatusOK
		}
		// Invalid credentials never clear an existing session; the form is
		// re-rendered with the attempted username.
		h.Templates.Render(w, status, "login.html", map[string]any{
			"CsrfField": csrf.TemplateField(r),
			"Error":     msg,
			"Username":  username,
		})
		return
	}

	if err := h.Sessions.SetToken(w, r, auth.Token); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	h.Sessions.AddFlash(w, r, session.Flash{Type: "success", Message: "Welcome, " + auth.User.Username + "!"})
	slog.Info("Login successful", "user_id", auth.User.ID)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Clear(w, r)
	h.Sessions.AddFlash(w, r, session.Flash{Type: "success", Message: "Logged out successfully!"})
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// RequireSession gates admin routes on token presence. The redirect happens
// before any backend call is issued.
func (h *AdminHandler) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.Sessions.Token(r); !ok {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// expireSession handles a backend authorization rejection: evict the token
// and send the admin back to the login form.
func (h *AdminHandler) expireSession(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Clear(w, r)
	h.Sessions.AddFlash(w, r, session.Flash{Type: "error", Message: "Your session has expired. Please sign in again."})
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   h.Sessions.Flashes(w, r),
	}
	// The dashboard always shows the full unfiltered list.
	designs, err := h.API.ListDesigns(r.Context(), "")
	if err != nil {
		slog.Error("Failed to load designs for dashboard", "error", err)
		data["Error"] = "Failed to load designs"
		h.Templates.Render(w, http.StatusOK, "dashboard.html", data)
		return
	}
	data["Designs"] = designs
	h.Templates.Render(w, http.StatusOK, "dashboard.html", data)
}

func (h *AdminHandler) DeleteDesign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		h.Sessions.AddFlash(w, r, session.Flash{Type: "error", Message: "Invalid design id."})
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}

	token, _ := h.Sessions.Token(r)
	err = h.API.DeleteDesign(r.Context(), token, id)
	switch {
	case err == nil:
		h.Catalogue.Invalidate()
		h.Sessions.AddFlash(w, r, session.Flash{Type: "success", Message: "Design deleted."})
	case errors.Is(err, api.ErrNotFound):
		// Someone else got there first; the outcome is the same.
		h.Catalogue.Invalidate()
		h.Sessions.AddFlash(w, r, session.Flash{Type: "success", Message: "Design was already deleted."})
	case errors.Is(err, api.ErrSessionExpired):
		h.expireSession(w, r)
		return
	default:
		slog.Error("Failed to delete design", "id", id, "error", err)
		h.Sessions.AddFlash(w, r, session.Flash{Type: "error", Message: "Failed to delete design."})
	}
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}
