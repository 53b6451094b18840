// Package server exposes tree engines over HTTP for `arbor serve`.
//
// Each uploaded document becomes an instance: an [engine.Engine] behind a
// mutex, addressed by a random id. Clients drive instances with the same
// command names the engine understands and pull frames or exports after
// every change. Requests are synchronous; animations are settled before a
// response is written so every frame a client sees is at rest.
//
// # Routes
//
//	GET    /healthz
//	GET    /api/trees
//	POST   /api/trees?format=json|yaml|toml
//	GET    /api/trees/{id}
//	DELETE /api/trees/{id}
//	POST   /api/trees/{id}/commands
//	GET    /api/trees/{id}/frame
//	GET    /api/trees/{id}/layout
//	GET    /api/trees/{id}/export?format=svg|png|json|pdf|dot
package server

import (
	"context"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/engine"
	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/tree"
)

// Config holds server configuration.
type Config struct {
	Addr           string
	AllowedOrigins []string

	// Viewport is the size new instances start with.
	Viewport geom.Size

	// ExpandDepth is the initial collapse depth; -1 expands everything.
	ExpandDepth int

	// Engine options applied to every instance (theme, layout, passes).
	Engine []engine.Option

	// Cache stores exports per instance revision. Nil disables caching.
	Cache cache.Cache

	// ExportTTL bounds how long cached exports live.
	ExportTTL time.Duration

	Logger *log.Logger
}

// Server routes HTTP requests to engine instances.
type Server struct {
	cfg    Config
	logger *log.Logger
	cache  cache.Cache
	router chi.Router

	mu        sync.RWMutex
	instances map[string]*instance

	httpServer *http.Server
}

// New creates a server. No listener is opened until [Server.Start].
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Viewport.W <= 0 || cfg.Viewport.H <= 0 {
		cfg.Viewport = geom.Size{W: 1280, H: 800}
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	s := &Server{
		cfg:       cfg,
		logger:    cfg.Logger.WithPrefix("server"),
		cache:     cfg.Cache,
		instances: make(map[string]*instance),
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observe)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/trees", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/commands", s.handleCommand)
			r.Get("/frame", s.handleFrame)
			r.Get("/layout", s.handleLayout)
			r.Get("/export", s.handleExport)
		})
	})

	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins listening on the configured address. It returns
// http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.logger.Info("listening", "addr", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Load registers a document as a new instance and returns its id.
func (s *Server) Load(spec tree.Spec, docHash string) (string, error) {
	inst, err := s.newInstance(spec, docHash)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.instances[inst.id] = inst
	s.mu.Unlock()
	s.logger.Info("instance created", "id", inst.id, "nodes", inst.engine.Tree().Len())
	return inst.id, nil
}

// Replace swaps the document behind an existing instance, keeping its id.
// Viewport size and theme carry over; collapse state restarts from the
// configured depth.
func (s *Server) Replace(id string, spec tree.Spec, docHash string) error {
	inst, err := s.lookup(id)
	if err != nil {
		return err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	size := inst.engine.Viewport().Size()
	inst.engine = s.newEngine(spec, size)
	inst.docHash = docHash
	inst.revision++
	s.logger.Info("instance reloaded", "id", id, "nodes", inst.engine.Tree().Len())
	return nil
}

func (s *Server) lookup(id string) (*instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[id]
	if !ok {
		return nil, errNotFound(id)
	}
	return inst, nil
}

func (s *Server) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[id]; !ok {
		return false
	}
	delete(s.instances, id)
	return true
}

func (s *Server) ids() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.instances))
}
