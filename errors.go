package perksAdmin

import "errors"

var (
	// ErrInvalidConfig wraps every [Config.Validate] failure.
	ErrInvalidConfig = errors.New("invalid console config")
	// ErrBuilderUsed is returned by a second [Builder.Build].
	ErrBuilderUsed = errors.New("builder already used")
	// ErrRedisRequired is returned when the redis backend has no client.
	ErrRedisRequired = errors.New("redis storage backend requires a redis client")
	// ErrNotInitialized is returned by operations issued before [Console.Init].
	ErrNotInitialized = errors.New("console not initialized")
	// ErrDisposed is returned by operations issued after [Console.Dispose].
	ErrDisposed = errors.New("console disposed")
	// ErrNotAuthenticated is returned by operations that need a signed-in admin.
	ErrNotAuthenticated = errors.New("not signed in")
	// ErrNoResetEmail means OTP verification was attempted before a code was requested.
	ErrNoResetEmail = errors.New("no password reset in progress")
	// ErrNoResetToken means a password reset was attempted without a verified code.
	ErrNoResetToken = errors.New("password reset session not verified")
	// ErrResetSessionExpired means the reset token's exp claim has passed.
	ErrResetSessionExpired = errors.New("password reset session expired")
)
