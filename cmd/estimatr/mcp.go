package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/estimatr/internal/logger"
	"github.com/mark3labs/estimatr/internal/mcpserver"
	"github.com/mark3labs/estimatr/internal/predict"
	"github.com/mark3labs/estimatr/internal/refdata"
	"github.com/spf13/cobra"
)

var mcpFlags struct {
	http string
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve estimate tools over MCP",
	Long: `Serve the estimate-price and reference-data tools over the Model Context
Protocol. Uses stdio by default; --http serves the streamable HTTP transport
at http://<addr>/mcp instead.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpFlags.http, "http", "", "Serve over HTTP on this address instead of stdio (e.g. 127.0.0.1:8765)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	cat, err := refdata.Load(cfg.ReferenceData)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder mcpserver.Recorder
	if cfg.History {
		store, closeFn, err := openHistory(ctx)
		if err != nil {
			logger.Warn("History disabled: %v", err)
		} else {
			defer closeFn()
			recorder = store
		}
	}

	srv := mcpserver.New(cat, predict.New(cfg.Endpoint, predict.WithTimeout(cfg.Timeout)), recorder, version)

	if mcpFlags.http == "" {
		return srv.ServeStdio()
	}

	if _, err := srv.Start(mcpFlags.http); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "MCP server listening at %s\n", srv.URL())

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
