package cli

import (
	"context"

	"github.com/spf13/cobra"

	perksAdmin "github.com/MrEthical07/perksAdmin"
	"github.com/MrEthical07/perksAdmin/forms"
)

func (a *app) passwordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change or reset the admin password",
		Long: `Change the signed-in admin's password, or reset a forgotten one.

A reset runs in three steps that may span several invocations:
  perks-admin password forgot --email ops@perks.app
  perks-admin password verify 123456
  perks-admin password reset --password 'N3w!secret' --confirm 'N3w!secret'`,
	}

	change := &cobra.Command{
		Use:   "change",
		Short: "Change the signed-in admin's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, _ := cmd.Flags().GetString("current")
			next, _ := cmd.Flags().GetString("new")
			confirm, _ := cmd.Flags().GetString("confirm")

			return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
				_, err := c.ChangePassword(ctx, forms.ChangePassword{Current: current, New: next, Confirm: confirm})
				return err
			})
		},
	}
	change.Flags().String("current", "", "current password")
	change.Flags().String("new", "", "new password")
	change.Flags().String("confirm", "", "new password again")

	forgot := &cobra.Command{
		Use:   "forgot",
		Short: "Email a verification code",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
				_, err := c.ForgotPassword(ctx, forms.ForgotPassword{Email: email})
				return err
			})
		},
	}
	forgot.Flags().String("email", "", "admin email")
	_ = forgot.MarkFlagRequired("email")

	verify := &cobra.Command{
		Use:   "verify <code>",
		Short: "Verify the emailed six-digit code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
				if _, err := c.VerifyOTP(ctx, args[0]); err != nil {
					return err
				}
				a.printer.Success("Code verified; set a new password with 'perks-admin password reset'")
				return nil
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password after verification",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, _ := cmd.Flags().GetString("password")
			confirm, _ := cmd.Flags().GetString("confirm")
			token, _ := cmd.Flags().GetString("token")

			return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
				_, err := c.ResetPassword(ctx, forms.ResetPassword{Password: pw, Confirm: confirm}, token)
				return err
			})
		},
	}
	reset.Flags().String("password", "", "new password")
	reset.Flags().String("confirm", "", "new password again")
	reset.Flags().String("token", "", "reset token (default: the one saved by verify)")

	cmd.AddCommand(change, forgot, verify, reset)
	return cmd
}
