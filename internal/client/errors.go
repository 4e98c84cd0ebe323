package client

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAPIKey    = errors.New("invalid API key")
	ErrLocationNotFound = errors.New("location not found")
	ErrUpstreamFailure  = errors.New("upstream failure")
	ErrRateLimited      = errors.New("rate limited")
	ErrBadResponse      = errors.New("malformed upstream response")
)

// APIError is a non-2xx answer from an upstream API. Message carries the provider's
// own explanation when it sent one.
type APIError struct {
	API        string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.API, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// UpstreamMessage returns the provider's message for err, or err's text.
func UpstreamMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func sentinelForStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrInvalidAPIKey
	case status == 404:
		return ErrLocationNotFound
	case status == 429:
		return ErrRateLimited
	default:
		return ErrUpstreamFailure
	}
}
