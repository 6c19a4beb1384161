// Package api exposes the parse and resolve pipeline over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/config"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/pipeline"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/rules"
)

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	ruleset  *rules.Ruleset
	resolver *pipeline.ResolveService
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. The resolver may be nil,
// in which case /api/resolve answers with parse-only records.
func NewServer(rs *rules.Ruleset, resolver *pipeline.ResolveService, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		ruleset:  rs,
		resolver: resolver,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/parse", s.handleParse)
		r.Post("/api/resolve", s.handleResolve)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
