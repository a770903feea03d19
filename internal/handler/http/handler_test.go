package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/faycal55/respira/internal/catalog"
	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/internal/service"
	"github.com/faycal55/respira/pkg/health"
	"github.com/faycal55/respira/pkg/logger"
	"github.com/faycal55/respira/pkg/middleware"
	"github.com/faycal55/respira/pkg/pagination"
)

// ============================================================================
// Mock services
// ============================================================================

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Register(ctx context.Context, in service.RegisterInput) (*domain.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockAuth) Login(ctx context.Context, in service.LoginInput) (*domain.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockAuth) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *mockAuth) Logout(ctx context.Context, userID, refreshToken string) error {
	return m.Called(ctx, userID, refreshToken).Error(0)
}

func (m *mockAuth) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuth) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

type mockProfiles struct{ mock.Mock }

func (m *mockProfiles) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *mockProfiles) Update(ctx context.Context, userID string, in domain.ProfileUpdate) (*domain.Profile, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

type mockConversations struct{ mock.Mock }

func (m *mockConversations) List(ctx context.Context, userID string, p pagination.Params) (pagination.Result[domain.Conversation], error) {
	args := m.Called(ctx, userID, p)
	return args.Get(0).(pagination.Result[domain.Conversation]), args.Error(1)
}

func (m *mockConversations) Create(ctx context.Context, userID, title string) (*domain.Conversation, error) {
	args := m.Called(ctx, userID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *mockConversations) Messages(ctx context.Context, userID, conversationID string) ([]domain.Message, error) {
	args := m.Called(ctx, userID, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *mockConversations) AddMessage(ctx context.Context, userID, conversationID string, in service.AddMessageInput) (*domain.Message, error) {
	args := m.Called(ctx, userID, conversationID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

type mockFunctions struct{ mock.Mock }

func (m *mockFunctions) Chat(ctx context.Context, userID string, req domain.ChatRequest) (*domain.ChatResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatResponse), args.Error(1)
}

func (m *mockFunctions) TextToSpeech(ctx context.Context, req domain.TTSRequest) (*domain.TTSResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TTSResponse), args.Error(1)
}

func (m *mockFunctions) SpeechToText(ctx context.Context, req domain.STTRequest) (*domain.STTResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.STTResponse), args.Error(1)
}

func (m *mockFunctions) CheckSubscription(ctx context.Context, userID string) (*domain.SubscriptionStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubscriptionStatus), args.Error(1)
}

func (m *mockFunctions) ContactSupport(ctx context.Context, userID string, in domain.SupportRequest) (*domain.SupportRequest, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupportRequest), args.Error(1)
}

type mockBreathing struct{ mock.Mock }

func (m *mockBreathing) Record(ctx context.Context, userID string, in service.RecordSessionInput) (*domain.BreathingSession, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BreathingSession), args.Error(1)
}

func (m *mockBreathing) History(ctx context.Context, userID string, p pagination.Params) (pagination.Result[domain.BreathingSession], error) {
	args := m.Called(ctx, userID, p)
	return args.Get(0).(pagination.Result[domain.BreathingSession]), args.Error(1)
}

// ============================================================================
// Helpers
// ============================================================================

const (
	testUserID = "6f1c2f7e-8d4b-4b9e-9a57-2b7d1c3e4f50"
	testToken  = "valid-token"
)

type testEnv struct {
	auth          *mockAuth
	profiles      *mockProfiles
	conversations *mockConversations
	functions     *mockFunctions
	breathing     *mockBreathing
	handler       http.Handler
}

func tokenValidator(token string) (*middleware.Claims, error) {
	if token == testToken {
		return &middleware.Claims{UserID: testUserID, Email: "lina@example.fr"}, nil
	}
	return nil, errors.New("invalid token")
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		auth:          &mockAuth{},
		profiles:      &mockProfiles{},
		conversations: &mockConversations{},
		functions:     &mockFunctions{},
		breathing:     &mockBreathing{},
	}
	env.handler = NewRouter(
		Services{
			Auth:          env.auth,
			Profiles:      env.profiles,
			Conversations: env.conversations,
			Functions:     env.functions,
			Breathing:     env.breathing,
		},
		catalog.Default(),
		tokenValidator,
		health.NewHandler(),
		logger.Discard(),
		RouterConfig{
			CORS:           middleware.DefaultCORSConfig(),
			CatalogMaxAge:  time.Hour,
			FunctionsRPS:   100,
			FunctionsBurst: 100,
		},
	)
	t.Cleanup(func() {
		env.auth.AssertExpectations(t)
		env.profiles.AssertExpectations(t)
		env.conversations.AssertExpectations(t)
		env.functions.AssertExpectations(t)
		env.breathing.AssertExpectations(t)
	})
	return env
}

// do sends a request through the full router. A nil body sends no body; an
// authenticated request carries the test bearer token.
func (e *testEnv) do(t *testing.T, method, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.Nil(t, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, out))
}
