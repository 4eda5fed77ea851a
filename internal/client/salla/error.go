package salla

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	go_json "github.com/goccy/go-json"
)

type ErrorKind string

const (
	// ErrorKindUnauthorized means the credential is bad or expired.
	// Fatal until re-auth; never worth retrying as-is.
	ErrorKindUnauthorized ErrorKind = "unauthorized"
	// ErrorKindRateLimited is retryable after backoff.
	ErrorKindRateLimited ErrorKind = "rate_limited"
	// ErrorKindServerError is a retryable remote 5xx.
	ErrorKindServerError ErrorKind = "server_error"
	// ErrorKindNotFound is fatal for the requested id.
	ErrorKindNotFound ErrorKind = "not_found"
	// ErrorKindRejected covers other rejections, including a 2xx
	// envelope with success=false.
	ErrorKindRejected ErrorKind = "rejected"
	// ErrorKindTimeout is a retryable deadline expiry.
	ErrorKindTimeout ErrorKind = "timeout"
	// ErrorKindConnection is a retryable transport failure.
	ErrorKindConnection ErrorKind = "connection"
)

type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("salla api: %s: %d %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("salla api: %s: %s", e.Kind, e.Message)
}

// Retryable reports whether the caller may retry the same request.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case ErrorKindRateLimited, ErrorKindServerError, ErrorKindTimeout, ErrorKindConnection:
		return true
	default:
		return false
	}
}

func parseAPIError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}

	msg := http.StatusText(statusCode)
	if err := go_json.Unmarshal(body, &errResp); err == nil {
		if errResp.Error.Message != "" {
			msg = errResp.Error.Message
		} else if errResp.Message != "" {
			msg = errResp.Message
		}
	}

	return &APIError{
		Kind:       kindForStatus(statusCode),
		StatusCode: statusCode,
		Message:    msg,
		Body:       string(body),
	}
}

func kindForStatus(statusCode int) ErrorKind {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorKindUnauthorized
	case statusCode == http.StatusNotFound:
		return ErrorKindNotFound
	case statusCode == http.StatusTooManyRequests:
		return ErrorKindRateLimited
	case statusCode >= 500:
		return ErrorKindServerError
	default:
		return ErrorKindRejected
	}
}

func transportError(err error) error {
	kind := ErrorKindConnection
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = ErrorKindTimeout
	}
	return &APIError{
		Kind:    kind,
		Message: err.Error(),
	}
}
