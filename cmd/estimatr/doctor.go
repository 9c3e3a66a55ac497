package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/estimatr/internal/config"
	"github.com/mark3labs/estimatr/internal/predict"
	"github.com/mark3labs/estimatr/internal/refdata"
	"github.com/mark3labs/estimatr/internal/tui/theme"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check reference data and the prediction service",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	s := theme.Current().S()
	ok := func(format string, a ...any) {
		fmt.Println(s.Success.Render("✓") + " " + fmt.Sprintf(format, a...))
	}
	fail := func(format string, a ...any) {
		fmt.Println(s.Error.Render("✗") + " " + fmt.Sprintf(format, a...))
	}

	failed := false

	if config.Exists() {
		ok("Config file found")
	} else {
		fmt.Println(s.Warning.Render("!") + " No config file, using defaults (run 'estimatr setup' to create one)")
	}

	cat, err := refdata.Load(cfg.ReferenceData)
	if err != nil {
		fail("Reference data: %v", err)
		failed = true
	} else {
		ok("Reference data: %d property types, %d cities (%s)", len(cat.Types()), len(cat.Cities()), cfg.ReferenceData)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if err := predict.New(cfg.Endpoint).Health(ctx); err != nil {
		fail("Prediction service at %s: %v", cfg.Endpoint, err)
		failed = true
	} else {
		ok("Prediction service at %s is healthy", cfg.Endpoint)
	}

	if failed {
		return fmt.Errorf("some checks failed")
	}
	return nil
}
