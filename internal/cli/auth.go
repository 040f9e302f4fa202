package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	perksAdmin "github.com/MrEthical07/perksAdmin"
	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/forms"
)

func (a *app) loginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the Perks API",
		Long: `Sign in and keep the session for later commands.

The password is read from --password or, when omitted, from the first line
of standard input.

Examples:
  perks-admin login --email ops@perks.app
  echo "$PASSWORD" | perks-admin login --email ops@perks.app`,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")

			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password from stdin: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
				snap, err := c.SignIn(ctx, forms.SignIn{Email: email, Password: password, Role: api.Role(role)})
				if err != nil && !snap.IsAuthenticated {
					return err
				}
				if err != nil {
					a.printer.Warning("signed in, but the session could not be saved: %v", err)
				}
				a.printer.Success("Signed in as %s", displayName(snap.User.Name(), snap.User.Email()))
				return nil
			})
		},
	}

	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (default: read from stdin)")
	cmd.Flags().String("role", string(api.RoleAdmin), "account role")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
				if !c.Session().IsAuthenticated() {
					a.printer.Info("Not signed in")
					return nil
				}
				if err := c.SignOut(ctx); err != nil {
					a.logger.Debug("sign out reported an error", "error", err)
				}
				a.printer.Success("Signed out")
				return nil
			})
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")

			return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
				store := c.Session()
				snap := store.Snapshot()
				if !snap.IsAuthenticated {
					return perksAdmin.ErrNotAuthenticated
				}

				signedIn, hasSignedIn := store.SignedInAt(ctx)
				expires, hasExpiry := store.TokenExpiry()

				if jsonOutput {
					info := map[string]any{"user": snap.User}
					if hasSignedIn {
						info["signedInAt"] = signedIn.UTC().Format(time.RFC3339)
					}
					if hasExpiry {
						info["tokenExpiresAt"] = expires.UTC().Format(time.RFC3339)
					}
					enc := json.NewEncoder(a.out)
					enc.SetIndent("", "  ")
					return enc.Encode(info)
				}

				a.printer.Print("%s", displayName(snap.User.Name(), snap.User.Email()))
				a.printer.Print("  id:    %s", snap.User.ID())
				a.printer.Print("  email: %s", snap.User.Email())
				a.printer.Print("  role:  %s", snap.User.Role())
				if hasSignedIn {
					a.printer.Print("  signed in: %s", signedIn.Local().Format(time.DateTime))
				}
				if hasExpiry {
					a.printer.Print("  token expires: %s", expires.Local().Format(time.DateTime))
				}
				return nil
			})
		},
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func displayName(name, email string) string {
	switch {
	case name != "" && email != "":
		return name + " <" + email + ">"
	case name != "":
		return name
	case email != "":
		return email
	}
	return "admin"
}
