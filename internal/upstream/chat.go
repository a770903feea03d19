package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/faycal55/respira/internal/domain"
	apperrors "github.com/faycal55/respira/pkg/errors"
)

const chatProvider = "ai provider"

// ChatConfig configures ChatClient.
type ChatConfig struct {
	BaseURL   string
	APIKey    string
	MaxTokens int
	// Models lists the accepted model names; the first one replaces unknown
	// requests. Empty accepts anything.
	Models []string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ChatClient calls an OpenAI-compatible /chat/completions endpoint.
type ChatClient struct {
	cfg  ChatConfig
	doer Doer
}

func NewChatClient(cfg ChatConfig, doer Doer) *ChatClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &ChatClient{cfg: cfg, doer: doer}
}

func (c *ChatClient) model(requested string) string {
	if len(c.cfg.Models) == 0 {
		return requested
	}
	for _, m := range c.cfg.Models {
		if m == requested {
			return m
		}
	}
	return c.cfg.Models[0]
}

// messages assembles the prompt: system frame, prior transcript, new text.
func messages(req domain.ChatRequest) []chatMessage {
	msgs := make([]chatMessage, 0, len(req.History)+2)
	msgs = append(msgs, chatMessage{Role: "system", Content: SystemPrompt(req.Theme, req.Language)})
	for _, h := range req.History {
		msgs = append(msgs, chatMessage{Role: string(h.Role), Content: h.Content})
	}
	return append(msgs, chatMessage{Role: "user", Content: req.UserText})
}

// Complete returns the assistant's answer.
func (c *ChatClient) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.model(req.Model),
		Messages:    messages(req),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := call(ctx, c.doer, chatProvider, httpReq)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperrors.Upstream(chatProvider, fmt.Errorf("decode completion response: %w", err))
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
