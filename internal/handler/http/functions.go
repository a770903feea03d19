package http

import (
	"log/slog"
	"net/http"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/pkg/httputil"
	"github.com/faycal55/respira/pkg/middleware"
	"github.com/faycal55/respira/pkg/validator"
)

// FunctionsHandler exposes the remote functions the app invokes by name.
type FunctionsHandler struct {
	service FunctionsService
	logger  *slog.Logger
}

func NewFunctionsHandler(svc FunctionsService, logger *slog.Logger) *FunctionsHandler {
	return &FunctionsHandler{service: svc, logger: logger}
}

// Chat handles POST /api/v1/functions/ai-chat
func (h *FunctionsHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	resp, err := h.service.Chat(r.Context(), userID, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, resp)
}

// TextToSpeech handles POST /api/v1/functions/tts
func (h *FunctionsHandler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req domain.TTSRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp, err := h.service.TextToSpeech(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, resp)
}

// SpeechToText handles POST /api/v1/functions/stt
func (h *FunctionsHandler) SpeechToText(w http.ResponseWriter, r *http.Request) {
	var req domain.STTRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp, err := h.service.SpeechToText(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, resp)
}

// CheckSubscription handles POST /api/v1/functions/check-subscription
func (h *FunctionsHandler) CheckSubscription(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	status, err := h.service.CheckSubscription(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, status)
}

// ContactSupport handles POST /api/v1/functions/contact-support. The form is
// open to signed-out visitors; a valid token attaches the request to the user.
func (h *FunctionsHandler) ContactSupport(w http.ResponseWriter, r *http.Request) {
	var req domain.SupportRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	stored, err := h.service.ContactSupport(r.Context(), userID, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusAccepted, map[string]string{
		"id":     stored.ID,
		"status": "queued",
	})
}
