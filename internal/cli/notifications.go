package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	perksAdmin "github.com/MrEthical07/perksAdmin"
	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/forms"
	"github.com/MrEthical07/perksAdmin/internal/output"
	"github.com/MrEthical07/perksAdmin/listctl"
)

const notificationFilter = "filter"

func (a *app) notificationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notify"},
		Short:   "Read and broadcast notifications",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List sent notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")
			filter, _ := cmd.Flags().GetString("filter")

			return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
				ctl := a.listState(cmd, c, map[string]string{notificationFilter: filter},
					listctl.WithFilter(listctl.TextField(notificationFilter, "all")))
				defer ctl.Close()

				q := ctl.Query()
				res, err := c.Resources().Notifications(ctx, api.NotificationParams{
					Page:   q.Page,
					Limit:  q.PageSize,
					Filter: q.Filters[notificationFilter],
				})
				if res.Data == nil {
					return err
				}
				ctl.SetTotalPages(res.Data.Pagination.TotalPages)

				if jsonOutput {
					return a.writeJSON(res.Data)
				}
				if len(res.Data.Data) == 0 {
					a.printer.Info("No notifications")
					return nil
				}
				table := output.NewTable(a.out, []string{"ID", "Title", "Description", "Sent"})
				for _, n := range res.Data.Data {
					table.AddRow(n.ID, n.Title, n.Description, n.CreatedAt)
				}
				if err := table.Render(); err != nil {
					return err
				}
				a.printPageFooter(ctl, res.Data.Pagination.TotalCount, "notifications")
				return nil
			})
		},
	}
	addListFlags(list)
	list.Flags().String("filter", "all", "notification filter")

	create := &cobra.Command{
		Use:   "create",
		Short: "Broadcast a notification to all users",
		Long: `Broadcast a notification.

Examples:
  perks-admin notifications create --title "Maintenance" --description "Back at 10:00 UTC"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			title, _ := cmd.Flags().GetString("title")
			description, _ := cmd.Flags().GetString("description")

			return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
				if !c.Session().IsAuthenticated() {
					return perksAdmin.ErrNotAuthenticated
				}
				_, err := c.CreateNotification(ctx, forms.CreateNotification{
					Title:       strings.TrimSpace(title),
					Description: strings.TrimSpace(description),
				})
				return err
			})
		},
	}
	create.Flags().String("title", "", "notification title")
	create.Flags().String("description", "", "notification body")

	cmd.AddCommand(list, create)
	return cmd
}
