package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/billionaireobi/adaladesigns/internal/api"
	"github.com/billionaireobi/adaladesigns/internal/catalogue"
)

const featuredCount = 6

// PublicHandler serves the marketing and catalogue pages. No page here ever
// touches the admin session.
type PublicHandler struct {
	API       *api.Client
	Catalogue *catalogue.Cache
	Templates *TemplateCache
}

func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	// The featured strip is decoration; the home page renders without it if
	// the backend is down.
	designs, err := h.Catalogue.Get(r.Context(), "")
	if err != nil {
		slog.Warn("Failed to load featured designs", "error", err)
	} else {
		if len(designs) > featuredCount {
			designs = designs[:featuredCount]
		}
		data["Featured"] = designs
	}
	h.Templates.Render(w, http.StatusOK, "home.html", data)
}

func (h *PublicHandler) CataloguePage(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	data := map[string]any{
		"Selected": category,
	}

	// The facet list never blocks the listing; a failed facet fetch just
	// collapses the filter bar to "All".
	categories, err := h.API.ListCategories(r.Context())
	if err != nil {
		slog.Warn("Failed to load categories", "error", err)
	}
	data["Categories"] = categories

	designs, err := h.Catalogue.Get(r.Context(), category)
	if err != nil {
		slog.Error("Failed to load designs", "category", category, "error", err)
		data["Error"] = "Failed to load designs"
		data["RetryURL"] = r.URL.RequestURI()
		h.Templates.Render(w, http.StatusOK, "catalogue.html", data)
		return
	}
	data["Designs"] = designs
	h.Templates.Render(w, http.StatusOK, "catalogue.html", data)
}

func (h *PublicHandler) DesignDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.Templates.Render(w, http.StatusNotFound, "design_notfound.html", nil)
		return
	}

	design, err := h.API.GetDesign(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, api.ErrNotFound) {
			status = http.StatusNotFound
		} else {
			slog.Error("Failed to load design", "id", id, "error", err)
		}
		h.Templates.Render(w, status, "design_notfound.html", nil)
		return
	}

	h.Templates.Render(w, http.StatusOK, "design_detail.html", map[string]any{
		"Design": design,
	})
}

func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	h.Templates.Render(w, http.StatusOK, "about.html", nil)
}

func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.Templates.Render(w, http.StatusOK, "contact.html", nil)
}
