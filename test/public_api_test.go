package test

import (
	"context"
	"net/http"
	"testing"

	perksAdmin "github.com/MrEthical07/perksAdmin"
	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/forms"
	"github.com/MrEthical07/perksAdmin/listctl"
	"github.com/MrEthical07/perksAdmin/middleware"
	"github.com/MrEthical07/perksAdmin/session"
	"github.com/MrEthical07/perksAdmin/storage"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = perksAdmin.New
	_ = perksAdmin.DefaultConfig

	var _ *perksAdmin.Console
	var _ *perksAdmin.Builder
	var _ perksAdmin.Config
	var _ perksAdmin.MetricsSnapshot
	var _ perksAdmin.Notification
	var _ perksAdmin.NotificationSink
	var _ perksAdmin.Navigator

	var c *perksAdmin.Console
	_ = func(ctx context.Context) {
		_, _ = c.Init(ctx)
		_, _ = c.SignIn(ctx, forms.SignIn{})
		_ = c.SignOut(ctx)
		_, _ = c.ChangePassword(ctx, forms.ChangePassword{})
		_, _ = c.UpdateProfile(ctx, api.UpdateProfileRequest{})
		_, _ = c.ForgotPassword(ctx, forms.ForgotPassword{})
		_, _ = c.VerifyOTP(ctx, "")
		_, _ = c.ResetPassword(ctx, forms.ResetPassword{}, "")
		_, _ = c.CreateNotification(ctx, forms.CreateNotification{})
		_ = c.ToggleBlock(ctx, "", "", true)
		_ = c.NewList(nil, listctl.WithPageSizes(10))
		c.Dispose()
	}

	var _ storage.Storage = storage.NewMemory()
	var _ storage.Storage = storage.NewFile("")
	var _ middleware.Source = (*session.Store)(nil)
	var _ func(http.Handler) http.Handler = middleware.RequireAuth(nil)
}
