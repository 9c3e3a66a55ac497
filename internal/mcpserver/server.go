// Package mcpserver exposes the estimate wizard as MCP tools, so agents can
// request price estimates through the same validation as the TUI.
package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/history"
	"github.com/mark3labs/estimatr/internal/logger"
	"github.com/mark3labs/estimatr/internal/predict"
	"github.com/mark3labs/estimatr/internal/refdata"
	"github.com/mark3labs/mcp-go/server"
)

// Predictor submits a prediction request.
type Predictor interface {
	Predict(ctx context.Context, req estimate.Request) (*predict.Result, error)
}

// Recorder stores successful estimates.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

// Server wraps the MCP server and, once started, its HTTP transport.
type Server struct {
	cat       *refdata.Catalog
	predictor Predictor
	recorder  Recorder // optional

	mcpServer *server.MCPServer
	stdServer *http.Server
	port      int
	mu        sync.Mutex
}

// New creates a server with its tools registered. recorder may be nil, in
// which case estimates are not recorded.
func New(cat *refdata.Catalog, predictor Predictor, recorder Recorder, version string) *Server {
	s := &Server{
		cat:       cat,
		predictor: predictor,
		recorder:  recorder,
	}
	s.mcpServer = server.NewMCPServer(
		"estimatr",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	logger.Debug("Serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}

// Start serves the streamable HTTP transport on addr ("127.0.0.1:0" picks a
// free port) and returns the bound port.
func (s *Server) Start(addr string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	))
	s.stdServer = &http.Server{Handler: mux}

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Info("MCP server ready on port %d", s.port)
	return s.port, nil
}

// Stop shuts the HTTP transport down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil
	}
	if err := s.stdServer.Shutdown(ctx); err != nil {
		logger.Warn("Error stopping MCP server: %v", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}
	s.stdServer = nil
	logger.Debug("MCP server stopped")
	return nil
}

// URL returns the HTTP URL for the MCP server endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}
