package upstream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faycal55/respira/internal/domain"
	apperrors "github.com/faycal55/respira/pkg/errors"
	"github.com/faycal55/respira/pkg/httpclient"
	"github.com/faycal55/respira/pkg/logger"
)

func testDoer(t *testing.T, srv *httptest.Server) Doer {
	t.Helper()
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	c := httpclient.NewWithHTTPClient(srv.Client(), cfg)
	return httpclient.NewBreakerClient(c, httpclient.DefaultBreakerConfig(t.Name()), logger.Discard())
}

func TestChatClient_Complete(t *testing.T) {
	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"  Respirons ensemble.  "}}]}`)
	}))
	defer srv.Close()

	c := NewChatClient(ChatConfig{BaseURL: srv.URL + "/v1/", APIKey: "sk-test", MaxTokens: 600}, testDoer(t, srv))
	answer, err := c.Complete(context.Background(), domain.ChatRequest{
		Model:    "gpt-4o-mini",
		Theme:    "Anxiété",
		Language: domain.LanguageFR,
		History: []domain.HistoryMessage{
			{Role: domain.RoleUser, Content: "Bonjour"},
			{Role: domain.RoleAssistant, Content: "Bonjour, comment allez-vous ?"},
		},
		UserText: "Je suis stressé",
	})
	require.NoError(t, err)
	assert.Equal(t, "Respirons ensemble.", answer)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 600, got.MaxTokens)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "Anxiété")
	assert.Contains(t, got.Messages[0].Content, "français")
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, chatMessage{Role: "user", Content: "Je suis stressé"}, got.Messages[3])
}

func TestChatClient_UnknownModelFallsBack(t *testing.T) {
	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	c := NewChatClient(ChatConfig{BaseURL: srv.URL, Models: []string{"gpt-4o-mini", "gpt-4o"}}, testDoer(t, srv))
	answer, err := c.Complete(context.Background(), domain.ChatRequest{Model: "o1-preview", Theme: "Sleep", Language: domain.LanguageEN, UserText: "hi"})
	require.NoError(t, err)
	assert.Empty(t, answer)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Contains(t, got.Messages[0].Content, "English")
}

func TestChatClient_ProviderErrorsAreUpstream(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"error":{"message":"invalid api key sk-..."}}`)
		}))

		c := NewChatClient(ChatConfig{BaseURL: srv.URL}, testDoer(t, srv))
		_, err := c.Complete(context.Background(), domain.ChatRequest{Theme: "x", Language: domain.LanguageFR, UserText: "a"})
		srv.Close()

		assert.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrUpstream), "status %d", status)
		assert.NotContains(t, apperrors.UserMessage(err, ""), "sk-", "provider details stay hidden")
	}
}

func TestTTSClient_Synthesize(t *testing.T) {
	audio := []byte{0x49, 0x44, 0x33, 0x04}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text-to-speech/XB0fDUnXU5powFXDhCwa", r.URL.Path)
		assert.Equal(t, "el-key", r.Header.Get("xi-api-key"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Bonjour", body["text"])
		assert.Equal(t, DefaultTTSModel, body["model_id"])
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(audio)
	}))
	defer srv.Close()

	c := NewTTSClient(TTSConfig{BaseURL: srv.URL, APIKey: "el-key"}, testDoer(t, srv))
	got, err := c.Synthesize(context.Background(), "Bonjour", "XB0fDUnXU5powFXDhCwa")
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(audio), got)
}

func TestSTTClient_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, DefaultSTTModel, r.FormValue("model"))
		assert.Equal(t, "fr", r.FormValue("language"))
		f, _, err := r.FormFile("file")
		assert.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "voice", string(data))
		_, _ = io.WriteString(w, `{"text":" J'ai du mal à dormir "}`)
	}))
	defer srv.Close()

	c := NewSTTClient(STTConfig{BaseURL: srv.URL, APIKey: "k"}, testDoer(t, srv))
	text, err := c.Transcribe(context.Background(), base64.StdEncoding.EncodeToString([]byte("voice")), "fr")
	require.NoError(t, err)
	assert.Equal(t, "J'ai du mal à dormir", text)
}

func TestSTTClient_RejectsBadAudio(t *testing.T) {
	c := NewSTTClient(STTConfig{BaseURL: "http://unused"}, nil)

	_, err := c.Transcribe(context.Background(), "%%%", "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = c.Transcribe(context.Background(), "", "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestSystemPrompt_Languages(t *testing.T) {
	assert.Contains(t, SystemPrompt("Sommeil", domain.LanguageFR), "Sommeil")
	assert.Contains(t, SystemPrompt("Sleep", domain.LanguageEN), "Sleep")
	assert.Contains(t, SystemPrompt("النوم", domain.LanguageAR), "النوم")
	assert.Equal(t, SystemPrompt("x", domain.LanguageFR), SystemPrompt("x", "de"))
}
