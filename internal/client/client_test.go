package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faycal55/respira/internal/domain"
	apperrors "github.com/faycal55/respira/pkg/errors"
	"github.com/faycal55/respira/pkg/httpclient"
	"github.com/faycal55/respira/pkg/logger"
	"github.com/faycal55/respira/pkg/pagination"
	"github.com/faycal55/respira/pkg/validator"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = 2 * time.Second
	return NewWithDoer(srv.URL, httpclient.NewWithHTTPClient(srv.Client(), cfg), logger.Discard())
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"code": code, "message": msg}})
}

func session(access, refresh string) domain.Session {
	return domain.Session{
		User:   domain.User{ID: "u-1", Email: "lina@respira.fr"},
		Tokens: domain.TokenPair{AccessToken: access, RefreshToken: refresh},
	}
}

func TestValidation_BeforeAnyNetworkCall(t *testing.T) {
	var hits atomic.Int32
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	ctx := context.Background()

	tests := []struct {
		name  string
		call  func() error
		field string
	}{
		{"empty email", func() error { _, err := cl.SignIn(ctx, "", "secret1"); return err }, "email"},
		{"malformed email", func() error { _, err := cl.SignIn(ctx, "lina@", "secret1"); return err }, "email"},
		{"short password", func() error { _, err := cl.SignIn(ctx, "lina@respira.fr", "12345"); return err }, "password"},
		{"blank first name", func() error {
			_, err := cl.SignUp(ctx, SignUpInput{Email: "lina@respira.fr", Password: "secret1", FirstName: "  "})
			return err
		}, "first_name"},
		{"reset without email", func() error { return cl.ResetPassword(ctx, " ") }, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			var ve *validator.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields(), tt.field)
		})
	}
	assert.Zero(t, hits.Load())
}

func TestSignIn_EmitsSignedIn(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "lina@respira.fr", body["email"])
		writeData(w, http.StatusOK, session("at-1", "rt-1"))
	}))

	var changes []SessionChange
	cl.OnSessionChange(func(c SessionChange) { changes = append(changes, c) })

	s, err := cl.SignIn(context.Background(), " lina@respira.fr ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", s.User.ID)

	require.Len(t, changes, 1)
	assert.Equal(t, SignedIn, changes[0].Event)
	assert.Equal(t, "at-1", changes[0].Identity.AccessToken)
	assert.Equal(t, "u-1", cl.Identity().UserID)
}

func TestSignIn_BadCredentials(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password")
	}))
	called := false
	cl.OnSessionChange(func(SessionChange) { called = true })

	_, err := cl.SignIn(context.Background(), "lina@respira.fr", "secret1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, "invalid email or password", apperrors.UserMessage(err, ""))
	assert.False(t, called)
	assert.Nil(t, cl.Identity())
}

func TestAuthenticatedCall_RefreshesOnce(t *testing.T) {
	var profileCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/profiles/me", func(w http.ResponseWriter, r *http.Request) {
		profileCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer at-2" {
			writeErr(w, http.StatusUnauthorized, "UNAUTHORIZED", "token expired")
			return
		}
		writeData(w, http.StatusOK, domain.Profile{ID: "u-1", FirstName: "Lina"})
	})
	mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "rt-1", body["refresh_token"])
		writeData(w, http.StatusOK, domain.TokenPair{AccessToken: "at-2", RefreshToken: "rt-2"})
	})
	cl := newTestClient(t, mux)
	cl.Restore(&domain.Identity{UserID: "u-1", AccessToken: "at-1", RefreshToken: "rt-1"})

	var events []SessionEvent
	cl.OnSessionChange(func(c SessionChange) { events = append(events, c.Event) })

	p, err := cl.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Lina", p.FirstName)
	assert.EqualValues(t, 2, profileCalls.Load())
	assert.Equal(t, []SessionEvent{TokenRefreshed}, events)
	assert.Equal(t, "rt-2", cl.Identity().RefreshToken)
}

func TestRefresh_RejectedSignsOut(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusUnauthorized, "UNAUTHORIZED", "refresh token has been revoked")
	}))
	cl.Restore(&domain.Identity{UserID: "u-1", AccessToken: "at-1", RefreshToken: "rt-1"})
	var events []SessionEvent
	cl.OnSessionChange(func(c SessionChange) { events = append(events, c.Event) })

	_, err := cl.ListConversations(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, []SessionEvent{SignedOut}, events)
	assert.Nil(t, cl.Identity())
}

func TestSignOut(t *testing.T) {
	t.Run("server failure keeps the session", func(t *testing.T) {
		cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeErr(w, http.StatusBadRequest, "INVALID_INPUT", "nope")
		}))
		cl.Restore(&domain.Identity{UserID: "u-1", AccessToken: "at"})
		require.Error(t, cl.SignOut(context.Background()))
		assert.NotNil(t, cl.Identity())
	})

	t.Run("success emits signed out", func(t *testing.T) {
		cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		}))
		cl.Restore(&domain.Identity{UserID: "u-1", AccessToken: "at"})
		var got *SessionChange
		cl.OnSessionChange(func(c SessionChange) { got = &c })

		require.NoError(t, cl.SignOut(context.Background()))
		require.NotNil(t, got)
		assert.Equal(t, SignedOut, got.Event)
		assert.Nil(t, got.Identity)
	})
}

func TestConversations(t *testing.T) {
	now := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/conversations", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pagination.NewResult([]domain.Conversation{{ID: "c-1", Title: "Hier"}}, 1, pagination.DefaultParams()))
	})
	mux.HandleFunc("POST /api/v1/conversations/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "c-1", r.PathValue("id"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeData(w, http.StatusCreated, domain.Message{ID: "m-1", ConversationID: "c-1", Role: domain.Role(in["role"]), Content: in["content"], CreatedAt: now})
	})
	mux.HandleFunc("GET /api/v1/conversations/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, []domain.Message{})
	})
	cl := newTestClient(t, mux)
	cl.Restore(&domain.Identity{UserID: "u-1", AccessToken: "at"})
	ctx := context.Background()

	list, err := cl.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Hier", list[0].Title)

	m, err := cl.AddMessage(ctx, "c-1", domain.RoleUser, "bonjour")
	require.NoError(t, err)
	assert.Equal(t, "m-1", m.ID)
	assert.True(t, now.Equal(m.CreatedAt))

	msgs, err := cl.ListMessages(ctx, "c-1")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	_, err = cl.AddMessage(ctx, "c-1", domain.Role("system"), "x")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestNotSignedIn(t *testing.T) {
	cl := newTestClient(t, http.NotFoundHandler())
	_, err := cl.GetProfile(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestChat_UpstreamFailureIsTyped(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusBadGateway, "UPSTREAM_ERROR", "ai provider is unavailable, please try again later")
	}))
	cl.Restore(&domain.Identity{UserID: "u-1", AccessToken: "at"})

	_, err := cl.Chat(context.Background(), domain.ChatRequest{
		Model: domain.DefaultAIModel, Theme: "Anxiété", Language: domain.LanguageFR, UserText: "hello",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestWrites_NotRetriedOnUpstreamFailure(t *testing.T) {
	var chats, saves, lists atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/functions/ai-chat", func(w http.ResponseWriter, r *http.Request) {
		chats.Add(1)
		writeErr(w, http.StatusBadGateway, "UPSTREAM_ERROR", "ai provider is unavailable, please try again later")
	})
	mux.HandleFunc("POST /api/v1/conversations/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		saves.Add(1)
		writeErr(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "database unavailable")
	})
	mux.HandleFunc("GET /api/v1/conversations/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		if lists.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeData(w, http.StatusOK, []domain.Message{})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 2
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = time.Millisecond
	cl := NewWithDoer(srv.URL, httpclient.NewWithHTTPClient(srv.Client(), cfg), logger.Discard())
	cl.Restore(&domain.Identity{UserID: "u-1", AccessToken: "at"})
	ctx := context.Background()

	_, err := cl.Chat(ctx, domain.ChatRequest{
		Model: domain.DefaultAIModel, Theme: "Anxiété", Language: domain.LanguageFR, UserText: "hello",
	})
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.Equal(t, int32(1), chats.Load())

	_, err = cl.AddMessage(ctx, "c-1", domain.RoleUser, "hello")
	require.Error(t, err)
	assert.Equal(t, int32(1), saves.Load())

	_, err = cl.ListMessages(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), lists.Load(), "reads are still retried")
}

func TestChat_SendsHistory(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.UserText)
		assert.Len(t, req.History, 1)
		writeData(w, http.StatusOK, domain.ChatResponse{Answer: "Bonjour"})
	}))
	cl.Restore(&domain.Identity{UserID: "u-1", AccessToken: "at"})

	resp, err := cl.Chat(context.Background(), domain.ChatRequest{
		Model: domain.DefaultAIModel, Theme: "Anxiété", Language: domain.LanguageFR,
		History:  []domain.HistoryMessage{{Role: domain.RoleAssistant, Content: "Salut"}},
		UserText: "  hello ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", resp.Answer)
}

func TestContactSupport_Anonymous(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeData(w, http.StatusAccepted, map[string]string{"status": "queued"})
	}))
	err := cl.ContactSupport(context.Background(), domain.SupportRequest{
		Name: "Lina", Email: "lina@respira.fr", Subject: "Abonnement", Message: "Bonjour",
	})
	require.NoError(t, err)

	err = cl.ContactSupport(context.Background(), domain.SupportRequest{Name: "Lina", Email: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCatalog_Filters(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/catalog/books", r.URL.Path)
		assert.Equal(t, "Solitude & Anxiété", r.URL.Query().Get("category"))
		assert.Equal(t, "camus", r.URL.Query().Get("search"))
		writeData(w, http.StatusOK, []domain.Book{{ID: "l-etranger", Title: "L'Étranger"}})
	}))
	books, err := cl.Books(context.Background(), "Solitude & Anxiété", "camus")
	require.NoError(t, err)
	require.Len(t, books, 1)
}
