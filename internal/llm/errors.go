package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies external-service failures so callers can distinguish
// connectivity problems from auth and quota issues.
type ErrorKind string

const (
	KindConnectivity ErrorKind = "connectivity"
	KindAuth         ErrorKind = "auth"
	KindRateLimit    ErrorKind = "rate_limit"
	KindOther        ErrorKind = "other"
)

// APIError is a failed call to the model provider.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// ErrorKindOf returns the kind of err when it is an APIError, KindOther otherwise.
func ErrorKindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindOther
}

func kindForStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusTooManyRequests:
		return KindRateLimit
	default:
		return KindOther
	}
}

// retryable reports whether a failed call is worth repeating: transient
// transport errors, throttling, and provider-side 5xx responses.
func retryable(e *APIError) bool {
	if e.Kind == KindConnectivity || e.Kind == KindRateLimit {
		return true
	}
	return e.StatusCode >= 500
}
