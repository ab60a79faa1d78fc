package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"secretpeek/internal/cli"
	"secretpeek/internal/config"
	"secretpeek/internal/editor"
	"secretpeek/internal/history"
	"secretpeek/internal/logging"
	"secretpeek/internal/provider"
	"secretpeek/internal/screens"
	"secretpeek/internal/term"
	"secretpeek/internal/version"
)

var appVersion = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "secretpeek",
	Short: "Browse and edit secrets across stores",
	Long: `secretpeek is an interactive browser for secret stores: AWS Secrets
Manager, Kubernetes cluster secrets, flat JSON files and dotenv files.

Run without arguments to start the interactive browser. The list, get and
set subcommands cover the same stores non-interactively for scripts.

Examples:
  secretpeek                                  # Interactive browser
  secretpeek list -t aws                      # List AWS secrets
  secretpeek get -t json db                   # Print a secret as JSON
  secretpeek get -t aws prod/db -q host       # Extract one field
  secretpeek get -t cluster db -o env         # Print as dotenv lines
  secretpeek set -t env web PORT=8080         # Write one key
  secretpeek history                          # Show recently opened secrets`,
	Version:      appVersion,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse()
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List secret names in one store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, kind, opts, cleanup, err := setupCLI()
		if err != nil {
			return err
		}
		defer cleanup()
		return env.List(context.Background(), kind, opts)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print one secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, kind, opts, cleanup, err := setupCLI()
		if err != nil {
			return err
		}
		defer cleanup()
		return env.Get(context.Background(), kind, args[0], opts, cli.GetOptions{
			Query:  flagQuery,
			Output: flagOutput,
		})
	},
}

var setCmd = &cobra.Command{
	Use:   "set <name> KEY=VALUE...",
	Short: "Write keys into a secret, creating the secret if needed",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, kind, opts, cleanup, err := setupCLI()
		if err != nil {
			return err
		}
		defer cleanup()
		return env.Set(context.Background(), kind, args[0], args[1:], opts)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently opened secrets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// History needs only the database path, not config.yaml.
		if err := config.EnsureDirs(); err != nil {
			return err
		}
		log, closeLog, err := logging.New(logging.Options{Debug: flagDebug, Path: config.LogFile})
		if err != nil {
			return err
		}
		defer closeLog()

		store, err := history.NewStore(config.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		if flagClear {
			return store.Clear()
		}

		env := &cli.Env{History: store, Log: log, Out: os.Stdout}
		return env.PrintHistory(flagLimit)
	},
}

var checkUpdateCmd = &cobra.Command{
	Use:   "check-update",
	Short: "Check whether a newer release is available",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		available, latest, url, err := version.CheckForUpdate(appVersion)
		if err != nil {
			return err
		}
		if available {
			fmt.Printf("new version %s available: %s\n", latest, url)
		} else {
			fmt.Printf("%s is up to date\n", appVersion)
		}
		return nil
	},
}

var (
	flagDebug     bool
	flagType      string
	flagRegion    string
	flagNamespace string
	flagPath      string
	flagQuery     string
	flagOutput    string
	flagLimit     int
	flagClear     bool
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Write debug logs to the config directory")
	rootCmd.PersistentFlags().StringVarP(&flagType, "type", "t", "", "Storage type (aws/cluster/json/env)")
	rootCmd.PersistentFlags().StringVar(&flagRegion, "region", "", "AWS region (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagNamespace, "namespace", "n", "", "Cluster namespace (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagPath, "path", "", "Directory holding secret files (overrides config)")

	getCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath expression applied to the secret")
	getCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (json/env)")

	historyCmd.Flags().IntVar(&flagLimit, "limit", 50, "Maximum entries to show")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Clear the access history")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(checkUpdateCmd)
}

// setup initializes configuration and logging, shared by every command.
func setup() (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Initialize()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	applyOverrides(cfg)

	log, closeLog, err := logging.New(logging.Options{Debug: flagDebug, Path: config.LogFile})
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, func() { _ = closeLog() }, nil
}

// applyOverrides layers command-line selectors over the config file.
func applyOverrides(cfg *config.Config) {
	if flagRegion != "" {
		cfg.Region = flagRegion
	}
	if flagNamespace != "" {
		cfg.Namespace = flagNamespace
	}
	if flagPath != "" {
		cfg.JSONDir = flagPath
		cfg.EnvDir = flagPath
	}
}

func newRegistry() *provider.Registry {
	return provider.NewRegistry(
		provider.NewAWS(),
		provider.NewCluster(),
		provider.NewJSONFile(),
		provider.NewEnvFile(),
	)
}

// resolveKind validates the --type flag for the non-interactive commands.
func resolveKind() (provider.Kind, error) {
	if flagType == "" {
		return "", fmt.Errorf("--type is required (one of aws, cluster, json, env)")
	}
	kind := provider.Kind(flagType)
	for _, k := range provider.Kinds() {
		if k == kind {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown storage type %q (want aws, cluster, json or env)", flagType)
}

// setupCLI prepares everything the list/get/set commands share.
func setupCLI() (*cli.Env, provider.Kind, provider.Options, func(), error) {
	cfg, log, closeLog, err := setup()
	if err != nil {
		return nil, "", provider.Options{}, nil, err
	}

	kind, err := resolveKind()
	if err != nil {
		closeLog()
		return nil, "", provider.Options{}, nil, err
	}

	// History is best effort for the scripting commands.
	store, err := history.NewStore(config.DatabasePath)
	if err != nil {
		log.Warn("history database unavailable", "error", err)
		store = nil
	}

	env := &cli.Env{
		Providers: newRegistry(),
		History:   store,
		Log:       log,
		Out:       os.Stdout,
	}
	cleanup := func() {
		if store != nil {
			store.Close()
		}
		closeLog()
	}
	return env, kind, optionsFor(cfg, kind), cleanup, nil
}

// optionsFor resolves the provider selectors for kind from the (already
// override-layered) config.
func optionsFor(cfg *config.Config, kind provider.Kind) provider.Options {
	opts := provider.Options{
		Region:    cfg.Region,
		Namespace: cfg.Namespace,
	}
	switch kind {
	case provider.KindJSON:
		opts.Path, _ = config.ExpandPath(cfg.JSONDir)
	case provider.KindEnv:
		opts.Path, _ = config.ExpandPath(cfg.EnvDir)
	}
	return opts
}

// runBrowse starts the interactive browser.
func runBrowse() error {
	cfg, log, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := history.NewStore(config.DatabasePath)
	if err != nil {
		log.Warn("history database unavailable", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	manager := term.NewManager(os.Stdin, os.Stdout, log)
	if err := manager.Initialize(); err != nil {
		return err
	}

	app := &screens.App{
		Term:      manager,
		Providers: newRegistry(),
		History:   store,
		Config:    cfg,
		Editor:    editor.NewBridge(manager, cfg.ResolveEditor(), log),
		Log:       log,
	}

	if err := screens.Run(app); err != nil {
		if errors.Is(err, term.ErrNotInteractive) {
			return fmt.Errorf("interactive mode needs a terminal; use the list/get/set subcommands in scripts")
		}
		return err
	}
	return nil
}
