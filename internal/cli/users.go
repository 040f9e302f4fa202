package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	perksAdmin "github.com/MrEthical07/perksAdmin"
	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/internal/output"
	"github.com/MrEthical07/perksAdmin/listctl"
	"github.com/MrEthical07/perksAdmin/query"
)

func (a *app) usersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List, inspect and block users",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Long: `List users page by page.

Examples:
  perks-admin users list
  perks-admin users list --search jane --page-size 25 --page 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listUsers(cmd, false)
		},
	}
	addListFlags(list)

	blocked := &cobra.Command{
		Use:   "blocked",
		Short: "List blocked users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listUsers(cmd, true)
		},
	}
	addListFlags(blocked)

	show := &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show a user's profile, earnings and feedback",
		Args:  cobra.ExactArgs(1),
		RunE:  a.showUser,
	}
	show.Flags().Bool("json", false, "output as JSON")

	cmd.AddCommand(list, blocked, show, a.blockCommand(true), a.blockCommand(false))
	return cmd
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().Int("page-size", 0, "rows per page (default: first configured page size)")
	cmd.Flags().String("search", "", "search text")
	cmd.Flags().Bool("json", false, "output as JSON")
}

// listState turns list flags into URL values and lets the list controller
// validate them the same way the web console does.
func (a *app) listState(cmd *cobra.Command, c *perksAdmin.Console, extra map[string]string, opts ...listctl.ControllerOption) *listctl.Controller {
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("page-size")
	search, _ := cmd.Flags().GetString("search")

	v := url.Values{}
	v.Set(listctl.ParamPage, strconv.Itoa(page))
	if size > 0 {
		v.Set(listctl.ParamPageSize, strconv.Itoa(size))
	}
	if search != "" {
		v.Set(listctl.ParamSearch, search)
	}
	for k, val := range extra {
		v.Set(k, val)
	}

	ctl := c.NewList(v, opts...)
	if size > 0 && ctl.Query().PageSize != size {
		a.printer.Warning("page size %d is not allowed (choose from %v); using %d", size, ctl.PageSizes(), ctl.Query().PageSize)
	}
	return ctl
}

func (a *app) listUsers(cmd *cobra.Command, blockedOnly bool) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
		ctl := a.listState(cmd, c, nil)
		defer ctl.Close()

		var (
			res query.Result[*api.UserList]
			err error
		)
		if blockedOnly {
			res, err = c.Resources().BlockedUsers(ctx, ctl.Query().Params())
		} else {
			res, err = c.Resources().Users(ctx, ctl.Query().Params())
		}
		if res.Data == nil {
			return err
		}
		ctl.SetTotalPages(res.Data.Pagination.TotalPages)

		if jsonOutput {
			return a.writeJSON(res.Data)
		}

		if len(res.Data.Data) == 0 {
			a.printer.Info("No users found")
			return nil
		}
		table := output.NewTable(a.out, []string{"ID", "Name", "Username", "Status", "Joined"})
		for _, u := range res.Data.Data {
			table.AddRow(u.ID, u.Name, u.Username, a.printer.StatusBadge(u.IsBlocked), u.CreatedAt)
		}
		if err := table.Render(); err != nil {
			return err
		}
		a.printPageFooter(ctl, res.Data.Pagination.TotalItems, "users")
		return nil
	})
}

func (a *app) printPageFooter(ctl *listctl.Controller, total int, noun string) {
	q := ctl.Query()
	pages := ctl.TotalPages()
	if pages < 1 {
		pages = 1
	}
	a.printer.Print("%s", a.printer.Dim(fmt.Sprintf("Page %d of %d (%d %s)", q.Page, pages, total, noun)))
}

func (a *app) showUser(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
		res, err := c.Resources().UserDetail(ctx, args[0])
		if res.Data == nil {
			return err
		}
		u := res.Data
		if jsonOutput {
			return a.writeJSON(u)
		}

		a.printer.Header(displayName(u.Name, u.Email))
		a.printer.Print("  id:        %s", u.ID)
		a.printer.Print("  username:  %s", u.Username)
		a.printer.Print("  phone:     %s", u.Phone)
		a.printer.Print("  location:  %s", joinNonEmpty(", ", u.City, u.State))
		a.printer.Print("  status:    %s", a.printer.StatusBadge(u.IsBlocked))
		a.printer.Print("  rating:    %.1f (%d reviews received, %d given)", u.Rating, u.ReviewsReceived, u.ReviewsGiven)
		a.printer.Print("  tips:      %.2f sent, %.2f received", u.TipsSent, u.TipsReceived)
		if u.TotalEarnings != nil {
			a.printer.Print("  earnings:  %.2f", *u.TotalEarnings)
		}

		if len(u.MyEarnings) > 0 {
			a.printer.Header("Earnings")
			if err := a.printTips(u.MyEarnings, func(t api.Tip) string { return t.SentBy.Name }); err != nil {
				return err
			}
		}
		if len(u.MyContributions) > 0 {
			a.printer.Header("Contributions")
			if err := a.printTips(u.MyContributions, func(t api.Tip) string { return t.User.Name }); err != nil {
				return err
			}
		}
		if len(u.FeedbackReceived) > 0 {
			a.printer.Header("Feedback received")
			if err := a.printReviews(u.FeedbackReceived, func(r api.Review) string { return r.Reviewer.Name }); err != nil {
				return err
			}
		}
		if len(u.FeedbackGiven) > 0 {
			a.printer.Header("Feedback given")
			if err := a.printReviews(u.FeedbackGiven, func(r api.Review) string { return r.User.Name }); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *app) printTips(tips []api.Tip, party func(api.Tip) string) error {
	table := output.NewTable(a.out, []string{"Date", "Who", "Amount", "Method"})
	for _, t := range tips {
		who := party(t)
		if t.IsAnonymous {
			who = "Anonymous"
		}
		table.AddRow(t.CreatedAt, who, fmt.Sprintf("%.2f", t.Amount), t.Method)
	}
	return table.Render()
}

func (a *app) printReviews(reviews []api.Review, party func(api.Review) string) error {
	table := output.NewTable(a.out, []string{"Date", "Who", "Stars", "Text"})
	for _, r := range reviews {
		who := party(r)
		if r.IsAnonymous {
			who = "Anonymous"
		}
		table.AddRow(r.CreatedAt, who, fmt.Sprintf("%.1f", r.Stars), r.Description)
	}
	return table.Render()
}

func (a *app) blockCommand(block bool) *cobra.Command {
	use, short := "block <user-id>", "Block a user"
	if !block {
		use, short = "unblock <user-id>", "Unblock a user"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
				if !c.Session().IsAuthenticated() {
					return perksAdmin.ErrNotAuthenticated
				}
				return c.ToggleBlock(ctx, args[0], name, block)
			})
		},
	}
	cmd.Flags().String("name", "", "display name used in the confirmation")
	return cmd
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
