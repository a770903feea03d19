package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/faycal55/respira/internal/catalog"
	"github.com/faycal55/respira/pkg/httputil"
)

// CatalogHandler serves the static content bundled with the server.
type CatalogHandler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func NewCatalogHandler(c *catalog.Catalog, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: c, logger: logger}
}

// Techniques handles GET /api/v1/catalog/techniques
func (h *CatalogHandler) Techniques(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.catalog.Techniques())
}

// Technique handles GET /api/v1/catalog/techniques/{id}
func (h *CatalogHandler) Technique(w http.ResponseWriter, r *http.Request) {
	t, err := h.catalog.Technique(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, t)
}

// Books handles GET /api/v1/catalog/books?category=&search=
func (h *CatalogHandler) Books(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	httputil.WriteData(w, http.StatusOK, h.catalog.Books(catalog.BookFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}))
}

func (h *CatalogHandler) Book(w http.ResponseWriter, r *http.Request) {
	b, err := h.catalog.Book(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, b)
}

func (h *CatalogHandler) BookCategories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.catalog.BookCategories())
}

// Tracks handles GET /api/v1/catalog/tracks?category=
func (h *CatalogHandler) Tracks(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.catalog.Tracks(r.URL.Query().Get("category")))
}

func (h *CatalogHandler) Track(w http.ResponseWriter, r *http.Request) {
	t, err := h.catalog.Track(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, t)
}

func (h *CatalogHandler) TrackCategories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.catalog.TrackCategories())
}

// Plans handles GET /api/v1/catalog/plans
func (h *CatalogHandler) Plans(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.catalog.Plans())
}

// Themes handles GET /api/v1/catalog/themes
func (h *CatalogHandler) Themes(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.catalog.Themes())
}
