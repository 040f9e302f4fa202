package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	perksAdmin "github.com/MrEthical07/perksAdmin"
	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/internal/output"
	"github.com/MrEthical07/perksAdmin/query"
)

func (a *app) statsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard totals and the monthly graph",
		Long: `Show platform totals and monthly activity. Totals and graph are fetched
concurrently.

Examples:
  perks-admin stats
  perks-admin stats --year 2024`,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			jsonOutput, _ := cmd.Flags().GetBool("json")

			return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
				var (
					stats query.Result[*api.DashboardStats]
					graph query.Result[*api.DashboardGraph]
				)
				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					var err error
					stats, err = c.Resources().DashboardStats(gctx)
					if stats.Data != nil {
						return nil
					}
					return err
				})
				g.Go(func() error {
					var err error
					graph, err = c.Resources().DashboardGraph(gctx, year)
					if graph.Data != nil {
						return nil
					}
					return err
				})
				if err := g.Wait(); err != nil {
					return err
				}

				if jsonOutput {
					return a.writeJSON(map[string]any{"stats": stats.Data, "graph": graph.Data})
				}

				s := stats.Data
				a.printer.Header("Totals")
				totals := output.NewTable(a.out, []string{"Metric", "Value"})
				totals.AddRow("Users", strconv.Itoa(s.TotalUsers))
				totals.AddRow("Active users", strconv.Itoa(s.ActiveUsers))
				totals.AddRow("Inactive users", strconv.Itoa(s.InactiveUsers))
				totals.AddRow("Posts", strconv.Itoa(s.TotalPosts))
				totals.AddRow("Donations", money(s.TotalDonations))
				totals.AddRow("Revenue", money(s.TotalRevenue))
				totals.AddRow("App commission", money(s.TotalAppCommission))
				if err := totals.Render(); err != nil {
					return err
				}

				title := "Monthly"
				if graph.Data.Year > 0 {
					title = fmt.Sprintf("Monthly (%d)", graph.Data.Year)
				}
				a.printer.Header(title)
				return a.renderSeries(graph.Data.Series())
			})
		},
	}
	cmd.Flags().Int("year", 0, "graph year (default: current year)")
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func (a *app) compareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <year1> <year2>",
		Short: "Compare monthly activity of two years",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")
			year1, err1 := strconv.Atoi(args[0])
			year2, err2 := strconv.Atoi(args[1])
			if err1 != nil || err2 != nil {
				return &output.CLIError{Summary: "years must be numbers", ExitCode: output.ExitUsageError}
			}

			return a.withConsole(cmd, func(ctx context.Context, c *perksAdmin.Console) error {
				res, err := c.Resources().YearComparison(ctx, year1, year2)
				if res.NotApplicable {
					return &output.CLIError{
						Summary:  "choose two different years",
						ExitCode: output.ExitUsageError,
					}
				}
				if res.Data == nil {
					return err
				}
				if jsonOutput {
					return a.writeJSON(res.Data)
				}

				s1, s2 := res.Data.Year1.Series(), res.Data.Year2.Series()
				y1, y2 := strconv.Itoa(res.Data.Year1.Year), strconv.Itoa(res.Data.Year2.Year)
				table := output.NewTable(a.out, []string{"Month", "Users " + y1, "Users " + y2, "Revenue " + y1, "Revenue " + y2})
				for i, m := range api.Months {
					table.AddRow(monthLabel(m),
						number(s1[i].Users), number(s2[i].Users),
						money(s1[i].Revenue), money(s2[i].Revenue),
					)
				}
				return table.Render()
			})
		},
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func (a *app) renderSeries(series [12]api.MonthlyPoint) error {
	table := output.NewTable(a.out, []string{"Month", "Users", "Posts", "Revenue", "Donations", "Reports"})
	for i, m := range api.Months {
		p := series[i]
		table.AddRow(monthLabel(m), number(p.Users), number(p.Posts), money(p.Revenue), money(p.Donations), number(p.Reports))
	}
	return table.Render()
}

func monthLabel(m string) string {
	if len(m) < 3 {
		return m
	}
	return strings.ToUpper(m[:1]) + m[1:3]
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
