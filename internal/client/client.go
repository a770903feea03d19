// Package client talks to the Respira API. Every call returns (data, error);
// non-2xx responses are decoded into *errors.AppError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/faycal55/respira/internal/domain"
	apperrors "github.com/faycal55/respira/pkg/errors"
	"github.com/faycal55/respira/pkg/httpclient"
	"github.com/faycal55/respira/pkg/validator"
)

const serviceName = "respira-api"

// Doer executes HTTP requests. httpclient.Client and httpclient.BreakerClient
// both satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config configures New.
type Config struct {
	BaseURL string
	HTTP    httpclient.Config
	Breaker httpclient.BreakerConfig
}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		HTTP:    httpclient.DefaultConfig(),
		Breaker: httpclient.DefaultBreakerConfig(serviceName),
	}
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	doer    Doer
	logger  *slog.Logger

	mu        sync.RWMutex
	identity  *domain.Identity
	listeners []SessionListener
}

// New builds a client with retries and a circuit breaker.
func New(cfg Config, l *slog.Logger) *Client {
	hc := httpclient.New(cfg.HTTP)
	return NewWithDoer(cfg.BaseURL, httpclient.NewBreakerClient(hc, cfg.Breaker, l), l)
}

func NewWithDoer(baseURL string, doer Doer, l *slog.Logger) *Client {
	if l == nil {
		l = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		logger:  l,
	}
}

// envelope mirrors the server response body.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
	page   bool
}

// do sends c and decodes the data member of the response into out (when not
// nil). Authenticated calls retry once after refreshing an expired token.
func (cl *Client) do(ctx context.Context, c call, out any) error {
	err := cl.send(ctx, c, out)
	if !c.auth || !errors.Is(err, apperrors.ErrUnauthorized) {
		return err
	}
	if _, rerr := cl.Refresh(ctx); rerr != nil {
		return err
	}
	return cl.send(ctx, c, out)
}

func (cl *Client) send(ctx context.Context, c call, out any) error {
	var body io.Reader
	var raw []byte
	if c.body != nil {
		var err error
		raw, err = json.Marshal(c.body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", c.path, err)
		}
		body = bytes.NewReader(raw)
	}

	target := cl.baseURL + c.path
	if len(c.query) > 0 {
		target += "?" + c.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, c.method, target, body)
	if err != nil {
		return fmt.Errorf("build request %s: %w", c.path, err)
	}
	if raw != nil {
		req.Header.Set("Content-Type", "application/json")
		req.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(raw)), nil }
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Client-Info", "respira-cli/1.0.0")
	if c.auth {
		token := cl.accessToken()
		if token == "" {
			return apperrors.Unauthorized("not signed in")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := cl.doer.Do(ctx, req)
	if err != nil {
		cl.logger.DebugContext(ctx, "api call failed",
			slog.String("method", c.method),
			slog.String("path", c.path),
			slog.String("error", err.Error()),
		)
		return err
	}
	if !httpclient.IsSuccess(resp.StatusCode) {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if c.page {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", c.path, err)
		}
		return nil
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s response: %w", c.path, err)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("decode %s response: empty data", c.path)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", c.path, err)
	}
	return nil
}

// check runs the validator before any network call.
func check(v any) error {
	err := validator.Validate(v)
	if err == nil {
		return nil
	}
	return &apperrors.AppError{
		Code:    "VALIDATION_ERROR",
		Message: err.Error(),
		Status:  http.StatusBadRequest,
		Err:     errors.Join(apperrors.ErrInvalidInput, err),
	}
}
