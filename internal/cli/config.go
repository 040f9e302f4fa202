package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrEthical07/perksAdmin/internal/output"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				return a.writeJSON(a.cfg)
			}

			c := a.cfg
			table := output.NewTable(a.out, []string{"Key", "Value"})
			table.AddRow("api.base_url", c.API.BaseURL)
			table.AddRow("api.timeout", c.API.Timeout.String())
			table.AddRow("storage.backend", c.Storage.Backend)
			switch c.Storage.Backend {
			case "file":
				table.AddRow("storage.path", c.Storage.Path)
			case "redis":
				table.AddRow("storage.redis_addr", c.Storage.RedisAddr)
				table.AddRow("storage.redis_prefix", c.Storage.RedisPrefix)
			}
			table.AddRow("serve.addr", c.Serve.Addr)
			table.AddRow("logging.level", c.Logging.Level)
			table.AddRow("logging.format", c.Logging.Format)
			return table.Render()
		},
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}
