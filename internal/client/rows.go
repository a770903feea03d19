package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/pkg/pagination"
)

func (cl *Client) GetProfile(ctx context.Context) (*domain.Profile, error) {
	var p domain.Profile
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/api/v1/profiles/me", auth: true}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (cl *Client) UpdateProfile(ctx context.Context, in domain.ProfileUpdate) (*domain.Profile, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	var p domain.Profile
	if err := cl.do(ctx, call{method: http.MethodPut, path: "/api/v1/profiles/me", body: in, auth: true}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListConversations returns the first page of the user's conversations, most
// recently active first.
func (cl *Client) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	page, err := cl.ConversationsPage(ctx, pagination.DefaultParams())
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (cl *Client) ConversationsPage(ctx context.Context, p pagination.Params) (*pagination.Result[domain.Conversation], error) {
	var res pagination.Result[domain.Conversation]
	if err := cl.doPage(ctx, "/api/v1/conversations", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type createConversationInput struct {
	Title string `json:"title" validate:"required,notblank,max=200"`
}

func (cl *Client) CreateConversation(ctx context.Context, title string) (*domain.Conversation, error) {
	in := createConversationInput{Title: title}
	if err := check(in); err != nil {
		return nil, err
	}
	var c domain.Conversation
	if err := cl.do(ctx, call{method: http.MethodPost, path: "/api/v1/conversations", body: in, auth: true}, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (cl *Client) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var msgs []domain.Message
	path := "/api/v1/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := cl.do(ctx, call{method: http.MethodGet, path: path, auth: true}, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

type addMessageInput struct {
	Role     domain.Role `json:"role" validate:"required,oneof=user assistant"`
	Content  string      `json:"content" validate:"required,notblank"`
	AudioURL string      `json:"audio_url,omitempty" validate:"omitempty,url"`
}

func (cl *Client) AddMessage(ctx context.Context, conversationID string, role domain.Role, content string) (*domain.Message, error) {
	in := addMessageInput{Role: role, Content: content}
	if err := check(in); err != nil {
		return nil, err
	}
	var m domain.Message
	path := "/api/v1/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := cl.do(ctx, call{method: http.MethodPost, path: path, body: in, auth: true}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

type recordSessionInput struct {
	TechniqueID    string `json:"technique_id" validate:"required"`
	Cycles         int    `json:"cycles" validate:"gte=0"`
	ElapsedSeconds int    `json:"elapsed_seconds" validate:"gte=0"`
	Completed      bool   `json:"completed"`
}

// RecordBreathingSession logs a finished or stopped session.
func (cl *Client) RecordBreathingSession(ctx context.Context, s domain.BreathingSession) (*domain.BreathingSession, error) {
	in := recordSessionInput{
		TechniqueID:    s.TechniqueID,
		Cycles:         s.Cycles,
		ElapsedSeconds: s.ElapsedSeconds,
		Completed:      s.Completed,
	}
	if err := check(in); err != nil {
		return nil, err
	}
	var out domain.BreathingSession
	if err := cl.do(ctx, call{method: http.MethodPost, path: "/api/v1/breathing/sessions", body: in, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cl *Client) BreathingSessions(ctx context.Context, p pagination.Params) (*pagination.Result[domain.BreathingSession], error) {
	var res pagination.Result[domain.BreathingSession]
	if err := cl.doPage(ctx, "/api/v1/breathing/sessions", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func pageQuery(p pagination.Params) url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	return q
}

// doPage fetches a paginated list. Those responses carry the page metadata
// next to data instead of inside it.
func (cl *Client) doPage(ctx context.Context, path string, p pagination.Params, out any) error {
	return cl.do(ctx, call{method: http.MethodGet, path: path, query: pageQuery(p), auth: true, page: true}, out)
}
