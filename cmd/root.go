// Package cmd provides the command-line interface for validating and
// converting cohort definition documents.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cohortschema/config"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
)

// Global flags
var (
	cfgFile     string
	flagFormat  string
	flagNoColor bool
	flagJSON    bool
)

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cohortschema",
		Short: "Validate and convert cohort definition documents",
		Long: `cohortschema validates cohort definitions (trees of clinical-event
inclusion/exclusion criteria) and converts them between the Circe
(PascalCase) and WebAPI (camelCase) wire conventions.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagNoColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "input format: auto, circe or webapi")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "machine-readable JSON output")

	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newConvertCmd())

	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSettings merges the config file with command-line overrides.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if flagFormat != "" {
		settings.Format = flagFormat
	}
	if flagNoColor {
		settings.NoColor = true
	}
	return settings, nil
}

// buildLogger creates the CLI logger at the configured level, writing to
// stderr so stdout stays clean for command output.
func buildLogger(level string) (*zap.SugaredLogger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
