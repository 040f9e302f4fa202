package storage

import (
	"context"
	"errors"
)

// Keys used by the console in durable storage.
const (
	KeyAuthToken     = "authToken"
	KeyUser          = "user"
	KeyAuthTokenTime = "authTokenTime"
	KeyResetToken    = "resetToken"
	KeyResetEmail    = "resetEmail"
)

// ErrUnavailable is returned when the backing medium cannot be read or written.
var ErrUnavailable = errors.New("storage unavailable")

// Storage is the durable key/value contract shared by every backend.
//
// Get reports ok=false for a missing key; a missing key is never an error.
// Remove ignores keys that do not exist.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// SessionKeys are the keys cleared on sign-out and on a 401.
func SessionKeys() []string {
	return []string{KeyAuthToken, KeyUser, KeyAuthTokenTime}
}

// ResetKeys are the transient keys of the password-reset flow.
func ResetKeys() []string {
	return []string{KeyResetToken, KeyResetEmail}
}
