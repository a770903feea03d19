package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/faycal55/respira/pkg/errors"
	"github.com/faycal55/respira/pkg/logger"
)

func fastConfig() Config {
	return Config{Timeout: time.Second, MaxRetries: 2, RetryWaitMin: time.Millisecond, RetryWaitMax: 2 * time.Millisecond}
}

func TestClient_RetriesWithBodyReplay(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"text":"bonjour"}`, string(b))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewWithHTTPClient(srv.Client(), fastConfig())
	req, err := http.NewRequest(http.MethodPut, srv.URL, strings.NewReader(`{"text":"bonjour"}`))
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_PostIsSentOnce(t *testing.T) {
	for _, status := range []int{http.StatusBadGateway, http.StatusServiceUnavailable} {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(status)
		}))

		c := NewWithHTTPClient(srv.Client(), fastConfig())
		req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(`{"userText":"bonjour"}`))
		require.NoError(t, err)

		resp, err := c.Do(context.Background(), req)
		require.NoError(t, err)
		resp.Body.Close()
		srv.Close()
		assert.Equal(t, status, resp.StatusCode)
		assert.Equal(t, int32(1), calls.Load(), "status %d", status)
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewWithHTTPClient(srv.Client(), fastConfig())
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(1), calls.Load())
}

func TestParseResponseError(t *testing.T) {
	tests := []struct {
		status   int
		body     string
		code     string
		message  string
		sentinel error
	}{
		{400, `{"error":{"code":"VALIDATION_ERROR","message":"request validation failed"}}`, "VALIDATION_ERROR", "request validation failed", apperrors.ErrInvalidInput},
		{401, `{"error":{"code":"UNAUTHORIZED","message":"invalid credentials"}}`, "UNAUTHORIZED", "invalid credentials", apperrors.ErrUnauthorized},
		{404, `not json`, "NOT_FOUND", "backend returned 404", apperrors.ErrNotFound},
		{429, ``, "RATE_LIMITED", "backend returned 429", apperrors.ErrRateLimited},
		{502, `{"error":{"code":"UPSTREAM_ERROR","message":"ai provider is unavailable"}}`, "UPSTREAM_ERROR", "ai provider is unavailable", apperrors.ErrUpstream},
	}
	for _, tt := range tests {
		resp := &http.Response{StatusCode: tt.status, Body: io.NopCloser(strings.NewReader(tt.body))}
		err := ParseResponseError(resp, "backend")

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, tt.code, appErr.Code)
		assert.Equal(t, tt.message, appErr.Message)
		assert.Equal(t, tt.status, appErr.Status)
		assert.True(t, errors.Is(err, tt.sentinel))
	}
}

func TestBreakerClient_TripsOnServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"an internal error occurred"}}`))
	}))
	defer srv.Close()

	cfg := fastConfig()
	cfg.MaxRetries = 0
	bc := NewBreakerClient(NewWithHTTPClient(srv.Client(), cfg), BreakerConfig{
		Name: "test-backend", MaxRequests: 1, Timeout: time.Minute, FailureRatio: 0.5, MinRequests: 2,
	}, logger.Discard())

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		_, err := bc.Do(context.Background(), req)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "INTERNAL_ERROR", appErr.Code)
	}
	assert.Equal(t, gobreaker.StateOpen, bc.State())

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err := bc.Do(context.Background(), req)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}
