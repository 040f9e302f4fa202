package perksAdmin

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/forms"
	"github.com/MrEthical07/perksAdmin/internal/events"
	"github.com/MrEthical07/perksAdmin/jwt"
	"github.com/MrEthical07/perksAdmin/storage"
)

// The reset flow runs in three steps, each persisting what the next needs:
//
//	ForgotPassword  stores resetEmail and drops any earlier resetToken
//	VerifyOTP       needs resetEmail, stores resetToken
//	ResetPassword   needs resetToken, clears both keys on success
//
// The steps may run in different processes; storage carries the state.

// ForgotPassword requests a verification code for email.
func (c *Console) ForgotPassword(ctx context.Context, form forms.ForgotPassword) (*api.MessageResponse, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	form.Email = strings.TrimSpace(form.Email)
	if err := forms.Validate(form); err != nil {
		return nil, err
	}

	resp, err := c.client.ForgotPassword(ctx, api.ForgotPasswordRequest{Email: form.Email, Role: api.RoleAdmin})
	if err != nil {
		c.notify(ctx, events.LevelError, "password-reset", api.Message(err, "Failed to send verification code"))
		return nil, err
	}
	c.metrics.Inc(MetricPasswordResetRequest)

	if err := errors.Join(
		c.storage.Remove(ctx, storage.KeyResetToken),
		c.storage.Set(ctx, storage.KeyResetEmail, form.Email),
	); err != nil {
		return resp, err
	}
	c.notify(ctx, events.LevelSuccess, "password-reset", messageOr(resp.Message, "Verification code sent to your email"))
	return resp, nil
}

// ResetEmail returns the address a code was last requested for.
func (c *Console) ResetEmail(ctx context.Context) (string, bool) {
	if c.ready() != nil {
		return "", false
	}
	email, ok, err := c.storage.Get(ctx, storage.KeyResetEmail)
	if err != nil || !ok || email == "" {
		return "", false
	}
	return email, true
}

// VerifyOTP checks the six-digit code sent to the stored reset email and keeps
// the returned reset token for [Console.ResetPassword].
func (c *Console) VerifyOTP(ctx context.Context, otp string) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	email, ok := c.ResetEmail(ctx)
	if !ok {
		return "", ErrNoResetEmail
	}
	form := forms.VerifyOTP{Email: email, OTP: strings.TrimSpace(otp)}
	if err := forms.Validate(form); err != nil {
		c.metrics.Inc(MetricOTPVerifyFailure)
		return "", err
	}

	resp, err := c.client.VerifyOTP(ctx, api.VerifyOTPRequest{Email: email, Role: api.RoleAdmin, OTP: form.OTP})
	if err == nil && resp.Data.Token == "" {
		err = &api.Error{Message: "Invalid verification code", Status: http.StatusOK, Kind: api.KindDecode}
	}
	if err != nil {
		c.metrics.Inc(MetricOTPVerifyFailure)
		c.notify(ctx, events.LevelError, "password-reset", api.Message(err, "Invalid verification code"))
		return "", err
	}
	c.metrics.Inc(MetricOTPVerifySuccess)

	if err := c.storage.Set(ctx, storage.KeyResetToken, resp.Data.Token); err != nil {
		return resp.Data.Token, err
	}
	return resp.Data.Token, nil
}

// ResetPassword sets a new password. token overrides the stored reset token
// when non-empty. A token whose exp claim has passed fails with
// [ErrResetSessionExpired] before any request is sent; opaque tokens are
// left to the server.
func (c *Console) ResetPassword(ctx context.Context, form forms.ResetPassword, token string) (*api.MessageResponse, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if token == "" {
		stored, ok, err := c.storage.Get(ctx, storage.KeyResetToken)
		if err != nil {
			return nil, err
		}
		if ok {
			token = stored
		}
	}
	if token == "" {
		return nil, ErrNoResetToken
	}

	if claims, err := jwt.Inspect(token); err == nil && claims.Expired(c.now()) {
		c.metrics.Inc(MetricPasswordResetFailure)
		if rmErr := c.storage.Remove(ctx, storage.KeyResetToken); rmErr != nil {
			c.logger.Warn("clearing expired reset token failed", "error", rmErr)
		}
		return nil, ErrResetSessionExpired
	}

	if err := forms.Validate(form); err != nil {
		c.metrics.Inc(MetricPasswordResetFailure)
		return nil, err
	}

	resp, err := c.client.ResetPassword(ctx, api.ResetPasswordRequest{Password: form.Password}, token)
	if err != nil {
		c.metrics.Inc(MetricPasswordResetFailure)
		c.notify(ctx, events.LevelError, "password-reset", api.Message(err, "Failed to reset password"))
		return nil, err
	}
	c.metrics.Inc(MetricPasswordResetSuccess)

	if err := c.storage.Remove(ctx, storage.ResetKeys()...); err != nil {
		c.logger.Warn("clearing reset state failed", "error", err)
	}
	c.notify(ctx, events.LevelSuccess, "password-reset", messageOr(resp.Message, "Password reset successfully"))
	return resp, nil
}
