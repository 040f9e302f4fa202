package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	perksAdmin "github.com/MrEthical07/perksAdmin"
	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/internal/output"
)

func (a *app) profileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the signed-in admin's profile",
		Long: `Update profile fields and, optionally, the profile picture.

Examples:
  perks-admin profile --set name="Ada Lovelace"
  perks-admin profile --picture ./me.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, _ := cmd.Flags().GetStringArray("set")
			picture, _ := cmd.Flags().GetString("picture")

			fields := make(map[string]string, len(pairs))
			for _, kv := range pairs {
				k, v, ok := strings.Cut(kv, "=")
				if !ok || strings.TrimSpace(k) == "" {
					return &output.CLIError{
						Summary:  fmt.Sprintf("invalid --set %q", kv),
						Detail:   "expected key=value",
						ExitCode: output.ExitUsageError,
					}
				}
				fields[strings.TrimSpace(k)] = v
			}
			if len(fields) == 0 && picture == "" {
				return &output.CLIError{Summary: "nothing to update", Suggestion: "pass --set key=value or --picture", ExitCode: output.ExitUsageError}
			}

			req := api.UpdateProfileRequest{Fields: fields}
			if picture != "" {
				f, err := os.Open(picture)
				if err != nil {
					return err
				}
				defer f.Close()
				req.Picture = &api.File{Name: filepath.Base(picture), Content: f}
			}

			return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
				snap, err := c.UpdateProfile(ctx, req)
				if err != nil {
					return err
				}
				a.printer.Print("%s", displayName(snap.User.Name(), snap.User.Email()))
				return nil
			})
		},
	}
	cmd.Flags().StringArray("set", nil, "profile field as key=value (repeatable)")
	cmd.Flags().String("picture", "", "profile picture file")
	return cmd
}
