package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	perksAdmin "github.com/MrEthical07/perksAdmin"
	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/internal/output"
)

func (a *app) postsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts <donation|post>",
		Short: "List donation campaigns or anonymous posts",
		Long: `List posts of one type.

Examples:
  perks-admin posts donation
  perks-admin posts post --search giveaway`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(api.PostTypeDonation), string(api.PostTypeAnonymous)},
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")
			postType := api.PostType(args[0])
			if !postType.Valid() {
				return &output.CLIError{
					Summary:    fmt.Sprintf("unknown post type %q", args[0]),
					Suggestion: "use 'donation' or 'post'",
					ExitCode:   output.ExitUsageError,
				}
			}

			return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
				ctl := a.listState(cmd, c, nil)
				defer ctl.Close()

				res, err := c.Resources().Posts(ctx, postType, ctl.Query().Params())
				if res.Data == nil {
					return err
				}
				ctl.SetTotalPages(res.Data.Pagination.TotalPages)

				if jsonOutput {
					return a.writeJSON(res.Data)
				}
				if len(res.Data.Data) == 0 {
					a.printer.Info("No posts found")
					return nil
				}

				var table *output.Table
				if postType == api.PostTypeDonation {
					table = output.NewTable(a.out, []string{"ID", "Title", "By", "Raised", "Goal", "Progress", "Ends"})
					for _, p := range res.Data.Data {
						by := ""
						if p.User != nil {
							by = p.User.Name
						}
						table.AddRow(p.ID, p.Title, by,
							fmt.Sprintf("%.2f", p.AmountRaised),
							fmt.Sprintf("%.2f", p.Amount),
							fmt.Sprintf("%.0f%%", p.Progress()*100),
							p.EndDate,
						)
					}
				} else {
					table = output.NewTable(a.out, []string{"ID", "Description", "Likes", "Comments", "Created"})
					for _, p := range res.Data.Data {
						table.AddRow(p.ID, p.Description, fmt.Sprint(p.Likes), fmt.Sprint(p.Comments), p.CreatedAt)
					}
				}
				if err := table.Render(); err != nil {
					return err
				}
				a.printPageFooter(ctl, res.Data.Pagination.TotalItems, "posts")
				return nil
			})
		},
	}
	addListFlags(cmd)
	return cmd
}
