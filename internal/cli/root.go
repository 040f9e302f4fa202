// Package cli contains the perks-admin command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	perksAdmin "github.com/MrEthical07/perksAdmin"
	"github.com/MrEthical07/perksAdmin/internal/config"
	"github.com/MrEthical07/perksAdmin/internal/output"
)

var version = "dev"

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

// app holds the state shared by every command of one invocation.
type app struct {
	cfgFile string
	verbose bool

	cfg     *config.Config
	logger  *slog.Logger
	printer *output.Printer

	out io.Writer
	err io.Writer
}

// Execute runs the command tree on stdout and stderr. A failing command has
// already been reported when the error is returned.
func Execute() error {
	return ExecuteContext(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

// ExecuteContext runs the command tree with explicit arguments and writers.
func ExecuteContext(ctx context.Context, args []string, out, errw io.Writer) error {
	a := &app{out: out, err: errw}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errw)

	err := root.ExecuteContext(ctx)
	if err != nil {
		p := a.printer
		if p == nil {
			p = output.NewPrinterWithWriters(out, errw, false)
		}
		p.FormatError(output.Describe(err))
	}
	return err
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "perks-admin",
		Short: "Perks admin console",
		Long: `perks-admin manages the Perks platform from the terminal.

It signs in against the Perks API, keeps the session between runs and
exposes users, posts, notifications and dashboard analytics.

Example usage:
  perks-admin login --email ops@perks.app     # Sign in (password from stdin)
  perks-admin users list --search jane        # Search users
  perks-admin users block 64f0c2 --name Jane  # Block a user
  perks-admin stats --year 2025               # Dashboard totals and graph
  perks-admin serve                           # Local web console`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is .perks-admin.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.usersCommand(),
		a.postsCommand(),
		a.notificationsCommand(),
		a.statsCommand(),
		a.compareCommand(),
		a.passwordCommand(),
		a.profileCommand(),
		a.serveCommand(),
		a.configCommand(),
		a.versionCommand(),
	)
	return root
}

// initConfig loads configuration and sets up logging and output.
func (a *app) initConfig() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return &output.CLIError{
			Summary:    "loading config",
			Detail:     err.Error(),
			Suggestion: "check .perks-admin.yaml and PERKS_ADMIN_* variables",
			ExitCode:   output.ExitConfigError,
			Err:        err,
		}
	}
	a.cfg = cfg
	a.logger = newLogger(a.err, cfg.Logging, a.verbose)
	a.printer = output.NewPrinterWithWriters(a.out, a.err, output.ResolveColors(cfg.Output.Colors))

	a.logger.Debug("configuration loaded",
		"api", cfg.API.BaseURL,
		"storage", cfg.Storage.Backend,
	)
	return nil
}

func newLogger(w io.Writer, lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// withConsole builds and initializes a console for one command.
func (a *app) withConsole(cmd *cobra.Command, fn func(ctx context.Context, c *perksAdmin.Console) error) error {
	ctx := cmd.Context()
	c, closeFn, err := a.openConsole(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, c)
}

func (a *app) openConsole(ctx context.Context) (*perksAdmin.Console, func(), error) {
	b := perksAdmin.New().
		WithConfig(a.cfg.Console()).
		WithLogger(a.logger).
		WithNotificationSink(noticePrinter{p: a.printer}).
		WithNavigator(func(_ context.Context, path string) {
			a.logger.Debug("navigate", "path", path)
		})

	var rdb *redis.Client
	if a.cfg.Storage.Backend == string(perksAdmin.StorageRedis) {
		rdb = redis.NewClient(&redis.Options{Addr: a.cfg.Storage.RedisAddr, DB: a.cfg.Storage.RedisDB})
		b = b.WithRedis(rdb)
	}
	closeRedis := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
	}

	c, err := b.Build()
	if err != nil {
		closeRedis()
		return nil, nil, fmt.Errorf("building console: %w", err)
	}
	if _, err := c.Init(ctx); err != nil {
		c.Dispose()
		closeRedis()
		return nil, nil, err
	}
	return c, func() {
		c.Dispose()
		closeRedis()
	}, nil
}

// noticePrinter shows console notifications as printer lines.
type noticePrinter struct {
	p *output.Printer
}

func (n noticePrinter) Emit(_ context.Context, note perksAdmin.Notification) {
	switch note.Level {
	case perksAdmin.LevelSuccess:
		n.p.Success("%s", note.Message)
	case perksAdmin.LevelError:
		n.p.Error("%s", note.Message)
	default:
		n.p.Info("%s", note.Message)
	}
}
