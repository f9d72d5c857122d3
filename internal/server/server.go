package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/jamsched/internal/broadcast"
	"github.com/me/jamsched/internal/config"
	"github.com/me/jamsched/internal/scheduler"
	"github.com/me/jamsched/internal/workload"
)

// maxBodyBytes bounds uploaded workload documents.
const maxBodyBytes = 4 << 20

// Server is the controller's REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	parser    *workload.Parser
	planner   *scheduler.Planner
	defaults  workload.Defaults
	recorder  *broadcast.Recorder // optional; serves /cycles/latest
	loop      *scheduler.Loop     // optional; serves /workload
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithRecorder exposes the latest published broadcast.
func WithRecorder(rec *broadcast.Recorder) Option {
	return func(s *Server) {
		s.recorder = rec
	}
}

// WithLoop lets clients read and replace the running loop's workload.
func WithLoop(loop *scheduler.Loop) Option {
	return func(s *Server) {
		s.loop = loop
	}
}

// WithDefaults sets the cycle parameters filled into posted workloads.
func WithDefaults(d workload.Defaults) Option {
	return func(s *Server) {
		s.defaults = d
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, planner *scheduler.Planner, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		parser:    workload.NewParser(logger),
		planner:   planner,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)

		r.Post("/plan", s.handlePlan)

		r.Route("/workload", func(r chi.Router) {
			r.Get("/", s.handleGetWorkload)
			r.Put("/", s.handlePutWorkload)
		})

		r.Route("/cycles", func(r chi.Router) {
			r.Get("/latest", s.handleLatestCycle)
		})
	})
}
