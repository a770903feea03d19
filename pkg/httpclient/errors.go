package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/faycal55/respira/pkg/errors"
)

type errorEnvelope struct {
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

// ParseResponseError consumes and closes a non-2xx response and returns an
// AppError. Envelope bodies keep their code and message so the caller can
// show the server's wording.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned %d (read body: %w)", service, resp.StatusCode, err)
	}

	code, message := "", ""
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		code, message = env.Error.Code, env.Error.Message
	}
	if message == "" {
		message = fmt.Sprintf("%s returned %d", service, resp.StatusCode)
	}
	return statusError(resp.StatusCode, code, message)
}

func statusError(status int, code, message string) *apperrors.AppError {
	var sentinel error
	fallbackCode := "HTTP_ERROR"
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		sentinel, fallbackCode = apperrors.ErrInvalidInput, "INVALID_INPUT"
	case status == http.StatusUnauthorized:
		sentinel, fallbackCode = apperrors.ErrUnauthorized, "UNAUTHORIZED"
	case status == http.StatusForbidden:
		sentinel, fallbackCode = apperrors.ErrForbidden, "FORBIDDEN"
	case status == http.StatusNotFound:
		sentinel, fallbackCode = apperrors.ErrNotFound, "NOT_FOUND"
	case status == http.StatusConflict:
		sentinel, fallbackCode = apperrors.ErrConflict, "CONFLICT"
	case status == http.StatusGone:
		sentinel, fallbackCode = apperrors.ErrGone, "GONE"
	case status == http.StatusTooManyRequests:
		sentinel, fallbackCode = apperrors.ErrRateLimited, "RATE_LIMITED"
	case status == http.StatusBadGateway || status == http.StatusGatewayTimeout:
		sentinel, fallbackCode = apperrors.ErrUpstream, "UPSTREAM_ERROR"
	case status == http.StatusServiceUnavailable:
		sentinel, fallbackCode = apperrors.ErrServiceUnavail, "SERVICE_UNAVAILABLE"
	case status >= 500:
		sentinel, fallbackCode = apperrors.ErrInternal, "INTERNAL_ERROR"
	}
	if code == "" {
		code = fallbackCode
	}
	return &apperrors.AppError{Code: code, Message: message, Status: status, Err: sentinel}
}

// IsSuccess reports a 2xx status.
func IsSuccess(status int) bool { return status >= 200 && status < 300 }
