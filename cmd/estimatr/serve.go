package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/estimatr/internal/predictserver"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a stand-in prediction service",
	Long: `Run a local prediction service speaking the same HTTP contract as the
real one: POST /predict and GET /health.

It does not predict anything. Every request is answered with the configured
fixed "price" (0 by default, formatted as "0.00 MAD").`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address (default: serve_addr from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.ServeAddr
	if serveFlags.addr != "" {
		addr = serveFlags.addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := predictserver.New(predictserver.FixedEstimator{Price: cfg.Price})
	return srv.ListenAndServe(ctx, addr)
}
