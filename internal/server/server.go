package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"clipsight/internal/extract"
	"clipsight/internal/logging"
	"clipsight/internal/report"
	"clipsight/internal/validation"
)

// Config wires the server's collaborators.
type Config struct {
	Bind      string
	Store     *report.Store
	Validator *validation.Validator
	Extractor *extract.Extractor
	Logger    *slog.Logger
}

// Server serves the report API.
type Server struct {
	cfg    Config
	logger *slog.Logger
	http   *http.Server
}

// New builds a Server from its config.
func New(cfg Config) *Server {
	logger := logging.NewComponentLogger(cfg.Logger, "server")
	srv := &Server{cfg: cfg, logger: logger}
	srv.http = &http.Server{
		Addr:              cfg.Bind,
		Handler:           srv.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv
}

func (s *Server) router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
		r.Get("/analysis/{videoID}", s.handleAnalysis)
		r.Post("/validate", s.handleValidate)
		r.Post("/extract", s.handleExtract)
	})
	return r
}

// ListenAndServe blocks until the context is canceled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", logging.String("bind", s.cfg.Bind))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("elapsed", time.Since(started)))
	})
}
