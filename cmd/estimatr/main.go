package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/estimatr/internal/config"
	"github.com/mark3labs/estimatr/internal/logger"
	"github.com/mark3labs/estimatr/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀▀ █▀ ▀█▀ █ █▀▄▀█ ▄▀█ ▀█▀ █▀█"
	logoText2 = "██▄ ▄█  █  █ █ ▀ █ █▀█  █  █▀▄"
)

// Version set via ldflags during build
var version = "dev"

// Persistent flags override the loaded config when set.
var rootFlags struct {
	endpoint      string
	referenceData string
	dataDir       string
}

// cfg is loaded once before any command runs.
var cfg *config.Config

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "estimatr",
	Short:             "Estimate property prices from an interactive terminal form",
	PersistentPreRunE: loadConfig,
	RunE:              runEstimate,
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.Current()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

estimatr walks you through a four-step form (property type, location,
details, amenities) and asks a prediction service for an estimated price.
Successful estimates are kept in an embedded NATS JetStream history.

Configuration precedence:
  CLI flags > Environment variables > Project config > Global config > Defaults

Project config: ./estimatr.yml
Global config: ~/.config/estimatr/estimatr.yml`

	rootCmd.PersistentFlags().StringVar(&rootFlags.endpoint, "endpoint", "", "Prediction service base URL")
	rootCmd.PersistentFlags().StringVar(&rootFlags.referenceData, "reference-data", "", "Reference data file (.json, .js, .yaml)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.dataDir, "data-dir", "", "Data directory for history and preferences")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		loaded.Endpoint = rootFlags.endpoint
	}
	if flags.Changed("reference-data") {
		loaded.ReferenceData = rootFlags.referenceData
	}
	if flags.Changed("data-dir") {
		loaded.DataDir = rootFlags.dataDir
	}

	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := logger.Configure(loaded.LogLevel, loaded.LogFile); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	cfg = loaded
	logger.Debug("Config loaded: endpoint=%s reference_data=%s data_dir=%s", cfg.Endpoint, cfg.ReferenceData, cfg.DataDir)
	return nil
}
