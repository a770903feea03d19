package http

import (
	"log/slog"
	"net/http"

	"github.com/faycal55/respira/internal/service"
	"github.com/faycal55/respira/pkg/httputil"
	"github.com/faycal55/respira/pkg/middleware"
	"github.com/faycal55/respira/pkg/pagination"
	"github.com/faycal55/respira/pkg/validator"
)

// BreathingHandler records and lists the caller's breathing sessions.
type BreathingHandler struct {
	service BreathingService
	logger  *slog.Logger
}

func NewBreathingHandler(svc BreathingService, logger *slog.Logger) *BreathingHandler {
	return &BreathingHandler{service: svc, logger: logger}
}

type RecordSessionRequest struct {
	TechniqueID    string `json:"technique_id" validate:"required,max=64"`
	Cycles         int    `json:"cycles" validate:"gte=0"`
	ElapsedSeconds int    `json:"elapsed_seconds" validate:"gte=0"`
	Completed      bool   `json:"completed"`
}

// Record handles POST /api/v1/breathing/sessions
func (h *BreathingHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordSessionRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	session, err := h.service.Record(r.Context(), userID, service.RecordSessionInput{
		TechniqueID:    req.TechniqueID,
		Cycles:         req.Cycles,
		ElapsedSeconds: req.ElapsedSeconds,
		Completed:      req.Completed,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, session)
}

// History handles GET /api/v1/breathing/sessions
func (h *BreathingHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	result, err := h.service.History(r.Context(), userID, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
