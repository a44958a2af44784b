// Package server exposes the KYC check over HTTP.
//
// Routes:
//
//	GET  /            welcome message
//	POST /check-kyc/  multipart upload of doc1 and doc2, returns the KYC report
//
// Errors are returned as {"detail": "..."}.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"kyccheck/internal/logger"
	"kyccheck/internal/pipeline"
	"kyccheck/pkg/models"
)

// KYCChecker runs the check for two uploaded documents.
type KYCChecker interface {
	Check(ctx context.Context, doc1, doc2 pipeline.Document) (*models.KYCResponse, error)
}

// Options configures the HTTP server.
type Options struct {
	// Addr is the listen address, e.g. "127.0.0.1:8000".
	Addr string

	// MaxUploadBytes bounds the size of a check request body.
	MaxUploadBytes int64

	// TempDir is where per-request upload directories are created.
	// Empty uses the system temp directory.
	TempDir string

	// ShutdownTimeout bounds graceful shutdown. Default: 15 seconds.
	ShutdownTimeout time.Duration
}

// Server serves the KYC HTTP API.
type Server struct {
	checker KYCChecker
	opts    Options
	log     zerolog.Logger
	router  chi.Router
}

// New creates a Server with its routes registered.
func New(checker KYCChecker, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 15 * time.Second
	}

	s := &Server{
		checker: checker,
		opts:    opts,
		log:     logger.WithComponent("server"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)
	r.Use(cors)

	r.Get("/", s.handleRoot)
	r.Post("/check-kyc", s.handleCheckKYC)
	r.Post("/check-kyc/", s.handleCheckKYC)

	return r
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.opts.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
