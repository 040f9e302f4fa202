package perksAdmin

import (
	"context"
	"strings"

	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/forms"
	"github.com/MrEthical07/perksAdmin/internal/events"
	"github.com/MrEthical07/perksAdmin/middleware"
	"github.com/MrEthical07/perksAdmin/session"
)

const signInFailedMessage = "An error occurred during sign in"

// SignIn validates form, exchanges it for a token and records the session.
// Validation failures return [forms.ValidationErrors] without touching the
// session or the network. A persistence failure is returned together with the
// signed-in snapshot.
func (c *Console) SignIn(ctx context.Context, form forms.SignIn) (session.Session, error) {
	if err := c.ready(); err != nil {
		return session.Session{}, err
	}
	form.Email = strings.TrimSpace(form.Email)
	if err := forms.Validate(form); err != nil {
		c.metrics.Inc(MetricSignInFailure)
		return c.session.Snapshot(), err
	}

	c.session.BeginSignIn()
	resp, err := c.client.SignIn(ctx, api.SignInRequest{
		Email:    form.Email,
		Password: form.Password,
		Role:     form.Role,
	})
	if err != nil {
		c.metrics.Inc(MetricSignInFailure)
		snap := c.session.SignInFailure(api.Message(err, signInFailedMessage))
		c.logger.Info("sign in failed", "email", form.Email, "error", err)
		return snap, err
	}

	// A new identity must not see the previous admin's cached pages.
	c.cache.Remove()

	snap, err := c.session.SignInSuccess(ctx, session.UserRecord(resp.Data.User), resp.Data.Token)
	c.metrics.Inc(MetricSignInSuccess)
	if err != nil {
		c.logger.Warn("sign in succeeded but session was not persisted", "error", err)
	}
	c.logger.Info("signed in", "user_id", snap.User.ID(), "role", string(form.Role))
	return snap, err
}

// SignOut ends the session locally after a best-effort server logout and
// navigates to the login page.
func (c *Console) SignOut(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	err := c.session.SignOut(ctx, c.client.Logout)
	c.cache.Remove()
	c.metrics.Inc(MetricSignOut)
	c.navigate(ctx, middleware.LoginPath)
	return err
}

// ChangePassword changes the signed-in admin's password.
func (c *Console) ChangePassword(ctx context.Context, form forms.ChangePassword) (*api.MessageResponse, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if !c.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := forms.Validate(form); err != nil {
		c.metrics.Inc(MetricPasswordChangeFailure)
		return nil, err
	}

	resp, err := c.client.ChangePassword(ctx, api.ChangePasswordRequest{
		Password:    form.Current,
		NewPassword: form.New,
	})
	if err != nil {
		c.metrics.Inc(MetricPasswordChangeFailure)
		if !api.IsUnauthorized(err) {
			c.notify(ctx, events.LevelError, "settings", api.Message(err, "Failed to change password"))
		}
		return nil, err
	}

	c.metrics.Inc(MetricPasswordChangeSuccess)
	c.notify(ctx, events.LevelSuccess, "settings", messageOr(resp.Message, "Password changed successfully"))
	return resp, nil
}

// UpdateProfile sends profile changes and merges the result into the session
// user. When the server echoes no user, the submitted fields are merged.
func (c *Console) UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (session.Session, error) {
	if err := c.ready(); err != nil {
		return session.Session{}, err
	}
	if !c.session.IsAuthenticated() {
		return c.session.Snapshot(), ErrNotAuthenticated
	}

	resp, err := c.client.UpdateProfile(ctx, req)
	if err != nil {
		if !api.IsUnauthorized(err) {
			c.notify(ctx, events.LevelError, "settings", api.Message(err, "Failed to update profile"))
		}
		return c.session.Snapshot(), err
	}

	fields := session.UserRecord(resp.Data.User)
	if len(fields) == 0 {
		fields = make(session.UserRecord, len(req.Fields))
		for k, v := range req.Fields {
			fields[k] = v
		}
	}
	snap, err := c.session.UpdateUser(ctx, fields)
	c.notify(ctx, events.LevelSuccess, "settings", messageOr(resp.Message, "Profile updated successfully"))
	return snap, err
}

// CreateNotification validates and broadcasts a notification, then
// invalidates the notification feed.
func (c *Console) CreateNotification(ctx context.Context, form forms.CreateNotification) (*api.MessageResponse, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	resp, err := c.resources.CreateNotification(ctx, api.CreateNotificationRequest{
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
	})
	if err != nil {
		if !api.IsUnauthorized(err) {
			c.notify(ctx, events.LevelError, "notifications", api.Message(err, "Failed to create notification"))
		}
		return nil, err
	}
	c.metrics.Inc(MetricNotificationCreated)
	c.notify(ctx, events.LevelSuccess, "notifications", messageOr(resp.Message, "Notification sent"))
	return resp, nil
}

func messageOr(msg, fallback string) string {
	if msg = strings.TrimSpace(msg); msg != "" {
		return msg
	}
	return fallback
}
