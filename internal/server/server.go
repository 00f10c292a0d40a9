// Package server exposes the rate table over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gitlab.com/yelinaung/ecb-rates/internal/config"
	"gitlab.com/yelinaung/ecb-rates/internal/logger"
	"gitlab.com/yelinaung/ecb-rates/internal/rates"
)

const shutdownTimeout = 10 * time.Second

// Server serves the shared rate table. Every request works on its own clone.
type Server struct {
	addr       string
	locale     string
	chartCodes []string

	mu    sync.RWMutex
	table *rates.Table

	router *mux.Router
}

// New creates a Server for table using the HTTP settings in cfg.
func New(cfg *config.Config, table *rates.Table) *Server {
	s := &Server{
		addr:       cfg.HTTPAddr,
		locale:     cfg.TableLocale,
		chartCodes: cfg.ChartCurrencies,
		table:      table,
		router:     mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Use(logRequests)

	s.router.HandleFunc("/rates", s.handleRates).Methods(http.MethodGet)
	s.router.HandleFunc("/chart.png", s.handleChart).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/currencies", s.handleCurrencies).Methods(http.MethodGet)
	api.HandleFunc("/convert", s.handleConvert).Methods(http.MethodGet)
	api.HandleFunc("/cross", s.handleCross).Methods(http.MethodGet)

	logger.Log.Debug().
		Strs("routes", []string{
			"GET /rates", "GET /chart.png", "GET /healthz",
			"GET /api/currencies", "GET /api/convert", "GET /api/cross",
		}).
		Msg("HTTP routes registered")
}

// Handler returns the instrumented HTTP handler.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "ecb-rates")
}

// SetTable replaces the shared table.
func (s *Server) SetTable(table *rates.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table
}

// snapshot returns a private copy of the shared table.
func (s *Server) snapshot() *rates.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Clone()
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info().Str("addr", s.addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	logger.Log.Info().Msg("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
