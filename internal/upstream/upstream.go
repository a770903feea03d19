// Package upstream calls the third-party providers behind the remote
// functions: an OpenAI-compatible chat model, ElevenLabs text-to-speech and a
// Whisper-compatible transcription endpoint.
package upstream

import (
	"context"
	"log/slog"
	"net/http"

	apperrors "github.com/faycal55/respira/pkg/errors"
	"github.com/faycal55/respira/pkg/httpclient"
)

// Doer executes HTTP requests; *httpclient.BreakerClient in production.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// NewDoer builds a retrying client guarded by a circuit breaker named after
// the provider.
func NewDoer(provider string, cfg httpclient.Config, l *slog.Logger) *httpclient.BreakerClient {
	return httpclient.NewBreakerClient(httpclient.New(cfg), httpclient.DefaultBreakerConfig(provider), l)
}

// call runs req and turns every failure into an UPSTREAM_ERROR. Provider
// error bodies are never shown to end users.
func call(ctx context.Context, doer Doer, provider string, req *http.Request) (*http.Response, error) {
	resp, err := doer.Do(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, apperrors.Upstream(provider, err)
	}
	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, apperrors.Upstream(provider, httpclient.ParseResponseError(resp, provider))
	}
	return resp, nil
}
