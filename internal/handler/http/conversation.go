package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/internal/service"
	"github.com/faycal55/respira/pkg/httputil"
	"github.com/faycal55/respira/pkg/middleware"
	"github.com/faycal55/respira/pkg/pagination"
	"github.com/faycal55/respira/pkg/validator"
)

// ConversationHandler handles chat threads and their messages.
type ConversationHandler struct {
	service ConversationService
	logger  *slog.Logger
}

func NewConversationHandler(svc ConversationService, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{service: svc, logger: logger}
}

// CreateConversationRequest may omit the title; the server then names the
// thread after today's date.
type CreateConversationRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type AddMessageRequest struct {
	Role     domain.Role `json:"role" validate:"required,oneof=user assistant"`
	Content  string      `json:"content" validate:"required,notblank"`
	AudioURL string      `json:"audio_url,omitempty" validate:"omitempty,url"`
}

// List handles GET /api/v1/conversations, newest activity first.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	result, err := h.service.List(r.Context(), userID, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Create handles POST /api/v1/conversations
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	conv, err := h.service.Create(r.Context(), userID, req.Title)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, conv)
}

// Messages handles GET /api/v1/conversations/{id}/messages
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	msgs, err := h.service.Messages(r.Context(), userID, id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}

	httputil.WriteData(w, http.StatusOK, msgs)
}

// AddMessage handles POST /api/v1/conversations/{id}/messages
func (h *ConversationHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req AddMessageRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	msg, err := h.service.AddMessage(r.Context(), userID, id.String(), service.AddMessageInput{
		Role:     req.Role,
		Content:  req.Content,
		AudioURL: req.AudioURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, msg)
}
