package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/faycal55/respira/internal/domain"
)

// Chat asks the AI companion for a reply.
func (cl *Client) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	req.UserText = strings.TrimSpace(req.UserText)
	if req.History == nil {
		req.History = []domain.HistoryMessage{}
	}
	if err := check(req); err != nil {
		return nil, err
	}
	var out domain.ChatResponse
	if err := cl.do(ctx, call{method: http.MethodPost, path: "/api/v1/functions/ai-chat", body: req, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cl *Client) TextToSpeech(ctx context.Context, req domain.TTSRequest) (*domain.TTSResponse, error) {
	if req.VoiceID == "" {
		req.VoiceID = domain.DefaultVoiceID
	}
	if err := check(req); err != nil {
		return nil, err
	}
	var out domain.TTSResponse
	if err := cl.do(ctx, call{method: http.MethodPost, path: "/api/v1/functions/tts", body: req, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cl *Client) SpeechToText(ctx context.Context, req domain.STTRequest) (*domain.STTResponse, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	var out domain.STTResponse
	if err := cl.do(ctx, call{method: http.MethodPost, path: "/api/v1/functions/stt", body: req, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cl *Client) CheckSubscription(ctx context.Context) (*domain.SubscriptionStatus, error) {
	var out domain.SubscriptionStatus
	if err := cl.do(ctx, call{method: http.MethodPost, path: "/api/v1/functions/check-subscription", auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ContactSupport submits the contact form. It works signed in or not.
func (cl *Client) ContactSupport(ctx context.Context, req domain.SupportRequest) error {
	if err := check(req); err != nil {
		return err
	}
	body := map[string]string{
		"name":    req.Name,
		"email":   req.Email,
		"subject": req.Subject,
		"message": req.Message,
	}
	return cl.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/v1/functions/contact-support",
		body:   body,
		auth:   cl.accessToken() != "",
	}, nil)
}
