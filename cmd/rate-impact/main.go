// Command rate-impact projects household income from rate-sensitive holdings
// under central-bank rate shocks, and serves the projection API.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iwvelando/rate-impact/internal/config"
	"github.com/iwvelando/rate-impact/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "rate-impact",
		Short: "Project household income under central-bank rate shocks",
		Long: `rate-impact estimates how a household's annual income from cash, CDs,
bond funds, annuities and a HELOC changes when the policy rate moves, in
nominal or inflation-adjusted terms.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newProjectCmd(opts),
		newCompareCmd(opts),
		newPresetsCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfiguration reads the portfolio configuration. A missing file at the
// default location yields the built-in defaults; a missing file that was
// asked for explicitly is an error.
func (o *rootOptions) loadConfiguration(cmd *cobra.Command) (*config.Configuration, error) {
	if _, err := os.Stat(o.configPath); errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		conf := config.Default()
		return &conf, nil
	}

	conf, err := config.LoadConfiguration(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", o.configPath, err)
	}
	return conf, nil
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}

		// Fail here rather than on the first write.
		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rate-impact %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
