package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mark3labs/estimatr/internal/history"
	"github.com/mark3labs/estimatr/internal/logger"
	"github.com/mark3labs/estimatr/internal/nats"
	"github.com/mark3labs/estimatr/internal/predict"
	"github.com/mark3labs/estimatr/internal/refdata"
	"github.com/mark3labs/estimatr/internal/tui/wizard"
	"github.com/spf13/cobra"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Run the interactive estimate form (default)",
	Long: `Run the interactive estimate form.

The form asks for the property type, the city and neighborhood, the surface
and room counts, then the amenities that apply to the chosen type. The
answers are sent to the prediction service configured as "endpoint".`,
	RunE: runEstimate,
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing catalog is reported inside the form
	cat, loadErr := refdata.Load(cfg.ReferenceData)
	if loadErr != nil {
		logger.Error("Failed to load reference data: %v", loadErr)
	}

	opts := wizard.Options{
		Catalog:   cat,
		LoadErr:   loadErr,
		Predictor: predict.New(cfg.Endpoint, predict.WithTimeout(cfg.Timeout)),
		Endpoint:  cfg.Endpoint,
		DataDir:   cfg.DataDir,
	}

	if cfg.History && cat != nil {
		store, closeFn, err := openHistory(ctx)
		if err != nil {
			logger.Warn("History disabled: %v", err)
		} else {
			defer closeFn()
			opts.Recorder = store
		}
	}

	result, err := wizard.Run(ctx, opts)
	if errors.Is(err, wizard.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Estimated price: %s\n", result.Prediction.FormattedPrice)
	return nil
}

// openHistory opens the embedded broker under the data directory and the
// history store on top of it.
func openHistory(ctx context.Context) (*history.Store, func(), error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	broker, err := nats.Open(filepath.Join(cfg.DataDir, "nats"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start history broker: %w", err)
	}
	closeFn := func() {
		if err := broker.Close(); err != nil {
			logger.Warn("Error closing history broker: %v", err)
		}
	}

	store, err := history.NewStore(ctx, broker.JetStream())
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return store, closeFn, nil
}
