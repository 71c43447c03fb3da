package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/servo-mc/servo/internal/app"
	"github.com/servo-mc/servo/internal/config"
	"github.com/servo-mc/servo/internal/logger"
	"github.com/servo-mc/servo/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the level from the configuration file.
	logLevel string

	// rootCmd represents the base command when called without any subcommands.
	rootCmd = &cobra.Command{
		Use:   "servo",
		Short: "Cache Minecraft server artifacts and launch servers.",
		Long: `Servo keeps a local cache of Minecraft server jars, downloads newer builds
from the build registry when they appear and launches named servers with their
configuration, worlds and plugins kept in separate folders.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

var errUnknownLogLevel = errors.New("unknown log level")

// Execute runs the servo CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		logger.Error(ctx, err)
		logger.Sync()
		os.Exit(1)
	}

	logger.Sync()
}

// openApp loads the configuration, applies the log level and wires the components.
func openApp(cmd *cobra.Command) (*app.App, error) {
	a, err := app.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := a.Config.LogLevel
	if cmd.Flags().Changed("log-level") {
		level = logLevel
	}

	parsed, ok := logger.ParseLogLevel(level)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownLogLevel, level)
	}

	logger.SetLevel(parsed)

	return a, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigPath(), "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newCreateCommand(),
		newStartCommand(),
		newListCommand(),
		newRemoveCommand(),
		newDownloadCommand(),
		newCacheCommand(),
		newServeCommand(),
	)
}
