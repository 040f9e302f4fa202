package api

import (
	"errors"
	"net/http"
)

// Kind classifies an [Error].
type Kind uint8

const (
	// KindServer is a non-2xx response other than 401.
	KindServer Kind = iota
	// KindNetwork covers transport failures, timeouts and cancellation.
	KindNetwork
	// KindUnauthorized is a 401. It has already been handled globally.
	KindUnauthorized
	// KindDecode is a 2xx response whose body did not match the expected shape.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindDecode:
		return "decode"
	default:
		return "server"
	}
}

const (
	// DefaultErrorMessage is used when neither the server nor the caller names the failure.
	DefaultErrorMessage = "An error occurred"
	// NetworkErrorMessage is shown for transport failures and timeouts.
	NetworkErrorMessage = "Network error. Please try again."
)

// ErrInvalidConfig is returned by [New] for an unusable configuration.
var ErrInvalidConfig = errors.New("invalid api client config")

// Error is the normalized failure returned by every call.
type Error struct {
	Message   string
	Status    int
	Kind      Kind
	RequestID string

	cause error
}

// Error returns the user-facing message.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Temporary reports whether retrying the same request may succeed.
func (e *Error) Temporary() bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindNetwork:
		return true
	case KindServer:
		return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
	default:
		return false
	}
}

// AsError unwraps err into an [*Error].
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports whether err came from a 401.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Kind == KindUnauthorized
}

// Message returns the user-facing message of err, or fallback when err carries
// none.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback != "" {
		return fallback
	}
	return DefaultErrorMessage
}
