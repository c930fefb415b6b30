// Package api exposes folders and links over a JSON REST interface and
// provides a matching client.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/nikbrunner/linkkoy/internal/auth"
	"github.com/nikbrunner/linkkoy/internal/repository"
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

// ServerParams holds parameters for creating a Server.
type ServerParams struct {
	Repo           *repository.Repository
	Auth           *auth.Service
	Secret         []byte
	TokenTTL       time.Duration
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server is the REST API.
type Server struct {
	repo     *repository.Repository
	auth     *auth.Service
	secret   []byte
	tokenTTL time.Duration
	origins  []string
	logger   *slog.Logger
	metrics  *Metrics
	mux      *http.ServeMux
}

// NewServer creates a Server and registers its routes.
func NewServer(p ServerParams) *Server {
	ttl := p.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		repo:     p.Repo,
		auth:     p.Auth,
		secret:   p.Secret,
		tokenTTL: ttl,
		origins:  p.AllowedOrigins,
		logger:   logger,
		metrics:  NewMetrics(),
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.Handle("GET /api/auth/me", s.requireAuth(s.handleMe))

	s.mux.Handle("GET /api/folders", s.requireAuth(s.handleListFolders))
	s.mux.Handle("POST /api/folders", s.requireAuth(s.handleCreateFolder))
	s.mux.Handle("GET /api/folders/{id}", s.requireAuth(s.handleGetFolder))
	s.mux.Handle("PUT /api/folders/{id}", s.requireAuth(s.handleUpdateFolder))
	s.mux.Handle("DELETE /api/folders/{id}", s.requireAuth(s.handleDeleteFolder))

	s.mux.Handle("GET /api/links", s.requireAuth(s.handleListLinks))
	s.mux.Handle("POST /api/links", s.requireAuth(s.handleCreateLink))
	s.mux.Handle("GET /api/links/{id}", s.requireAuth(s.handleGetLink))
	s.mux.Handle("PUT /api/links/{id}", s.requireAuth(s.handleUpdateLink))
	s.mux.Handle("DELETE /api/links/{id}", s.requireAuth(s.handleDeleteLink))

	s.mux.Handle("GET /api/search", s.requireAuth(s.handleSearch))
}

// Handler returns the full middleware chain: CORS, recovery, metrics,
// then the routes.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.metrics.instrument(h)
	h = recovery(s.logger)(h)

	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	})
	return c.Handler(h)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
