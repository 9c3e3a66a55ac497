// Package predictserver serves a stand-in prediction endpoint with the same
// request and response shapes as the real service. It answers with a
// configured fixed price and does not model anything.
package predictserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/logger"
)

// Estimator produces a price for a request.
type Estimator interface {
	Estimate(ctx context.Context, req estimate.Request) (float64, error)
}

// FixedEstimator answers every request with the same price.
// A zero price is what the service reports when no model is loaded.
type FixedEstimator struct {
	Price float64
}

func (f FixedEstimator) Estimate(context.Context, estimate.Request) (float64, error) {
	return f.Price, nil
}

// FormatPrice renders a price as "1,234,567.89 MAD".
func FormatPrice(p float64) string {
	return humanize.FormatFloat("#,###.##", p) + " MAD"
}

type predictResponse struct {
	PredictedPrice float64 `json:"predicted_price_MAD"`
	FormattedPrice string  `json:"formatted_price"`
}

// Server is the HTTP server wrapping the router.
type Server struct {
	estimator Estimator
	router    *chi.Mux
}

// New creates a server backed by est.
func New(est Estimator) *Server {
	s := &Server{estimator: est}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// Browser front-ends call the service cross-origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/predict", s.handlePredict)

	s.router = r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Prediction stand-in listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("Shutting down prediction stand-in")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read body")
		return
	}

	var req estimate.Request
	if err := sonic.Unmarshal(raw, &req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	price, err := s.estimator.Estimate(r.Context(), req)
	if err != nil {
		logger.Error("Estimate failed: %v", err)
		respondError(w, http.StatusInternalServerError, "estimate failed")
		return
	}

	respondJSON(w, http.StatusOK, predictResponse{
		PredictedPrice: price,
		FormattedPrice: FormatPrice(price),
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	body, err := sonic.Marshal(data)
	if err != nil {
		logger.Error("failed to encode response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}
