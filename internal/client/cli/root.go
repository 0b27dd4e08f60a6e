package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iudanet/lostlibrary/internal/client/iocli"
	"github.com/iudanet/lostlibrary/internal/config"
)

type rootFlags struct {
	configPath string
	serverURL  string
	dbPath     string
	logLevel   string
}

// NewRootCommand builds the lostlibrary command tree.
// build is called once per invocation, after flags are parsed.
func NewRootCommand(build Builder, console iocli.IO, lookup config.LookupFunc, version string) *cobra.Command {
	var (
		flags rootFlags
		app   *App
	)

	root := &cobra.Command{
		Use:           "lostlibrary",
		Short:         "LOSTLIBRARY client: history articles, favorites and multiple accounts",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadClientConfig(cmd, flags, lookup)
			if err != nil {
				return err
			}

			app, err = build(cmd.Context(), cfg, console)
			if err != nil {
				return err
			}
			app.lookup = lookup
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
	}

	root.SetOut(console)
	root.SetErr(console)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to YAML config file")
	pf.StringVar(&flags.serverURL, "server", "", "backend URL")
	pf.StringVar(&flags.dbPath, "db", "", "path to local database")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	current := func() *App { return app }

	root.AddCommand(
		newSignUpCommand(current),
		newLoginCommand(current),
		newLogoutCommand(current),
		newWhoAmICommand(current),
		newAccountsCommand(current),
		newFavoritesCommand(current),
		newFeedCommand(current),
		newReadCommand(current),
		newLikeCommand(current, true),
		newLikeCommand(current, false),
		newProfileCommand(current),
		newPublishCommand(current),
	)

	return root
}

// Execute runs the command tree and prints the error the way users see it
func Execute(ctx context.Context, root *cobra.Command) int {
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage(err))
		return 1
	}
	return 0
}

// loadClientConfig применяет флаги поверх defaults -> YAML -> env
func loadClientConfig(cmd *cobra.Command, flags rootFlags, lookup config.LookupFunc) (config.Client, error) {
	cfg, err := config.LoadClient(flags.configPath, lookup)
	if err != nil {
		return config.Client{}, fmt.Errorf("failed to load config: %w", err)
	}

	pf := cmd.Flags()
	if pf.Changed("server") {
		cfg.ServerURL = flags.serverURL
	}
	if pf.Changed("db") {
		cfg.DBPath = flags.dbPath
	}
	if pf.Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Client{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
