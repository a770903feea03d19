package http

import (
	"log/slog"
	"net/http"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/pkg/httputil"
	"github.com/faycal55/respira/pkg/middleware"
	"github.com/faycal55/respira/pkg/validator"
)

// ProfileHandler serves the caller's own profile row.
type ProfileHandler struct {
	service ProfileService
	logger  *slog.Logger
}

func NewProfileHandler(svc ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{service: svc, logger: logger}
}

// Get handles GET /api/v1/profiles/me
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	profile, err := h.service.Get(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, profile)
}

// Update handles PUT /api/v1/profiles/me. Omitted fields are left as they are.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.ProfileUpdate
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	profile, err := h.service.Update(r.Context(), userID, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, profile)
}
