package backend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bnema/teamfocus-cli/internal/domain"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Data       any
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("api status %d: %s", e.StatusCode, e.Message)
	case e.Code != "":
		return fmt.Sprintf("api status %d: %s", e.StatusCode, e.Code)
	default:
		return fmt.Sprintf("api status %d: request failed", e.StatusCode)
	}
}

func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrUnauthorized:
		return e.IsAuth()
	case domain.ErrServer:
		return e.StatusCode >= http.StatusInternalServerError && e.StatusCode < 600
	case domain.ErrClient:
		return e.StatusCode >= http.StatusBadRequest && e.StatusCode < http.StatusInternalServerError && !e.IsAuth()
	default:
		return false
	}
}

func (e *APIError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// TrialEnded reports whether a 403 body signals an expired team trial.
func (e *APIError) TrialEnded() bool {
	if e.StatusCode != http.StatusForbidden {
		return false
	}
	return containsFold(e.Code, "trial") || containsFold(e.Message, "trial")
}

// NetworkError is a transport-level failure: no HTTP response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{domain.ErrNetwork, e.Err}
}

func retryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, domain.ErrServer)
}

func isNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
