package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"postviewer/app/config"
	"postviewer/app/logging"
	"postviewer/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CliVersion is overridden at build time with -ldflags "-X main.CliVersion=...".
var CliVersion = "1.0.0"

// exit is swapped out in tests.
var exit = os.Exit

func main() {
	exit(RealMain())
}

// RealMain runs the CLI and returns the process exit code.
func RealMain() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	var cfgFile, logLevel string

	root := &cobra.Command{
		Use:   "postviewer",
		Short: "Browse employee posts and comments from a JSONPlaceholder-style API",
		Long: `postviewer serves a page listing employees in a select menu. Choosing an
employee shows their posts, each with a toggle that shows or hides the
post's comments. Data is read from a JSONPlaceholder-compatible REST API,
either the public one or the local fixture API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "postviewer.yml", "config file path")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")

	load := func() (*config.Config, *zap.Logger, error) {
		return loadConfig(cfgFile, logLevel)
	}

	root.AddCommand(
		service.NewServeCommand(load),
		service.NewFixturesCommand(load),
		newVersionCommand(),
	)
	return root
}

// loadConfig reads and validates the configuration and builds the logger it describes.
func loadConfig(path, logLevel string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "postviewer version %s\n", CliVersion)
		},
	}
}
