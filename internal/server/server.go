package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"briefdeck/internal/classify"
	"briefdeck/internal/config"
	"briefdeck/internal/logger"
)

const defaultRequestTimeout = 60 * time.Second

// Options wires a Server. Converter is required.
type Options struct {
	Converter  Converter
	Classifier *classify.Classifier
	History    History // optional
	// Static maps URL prefixes such as "/previews" to directories.
	Static map[string]string
	Config config.Server
	Logger *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	converter  Converter
	classifier *classify.Classifier
	history    History
	static     map[string]string
	config     config.Server
	log        *slog.Logger
}

// New creates a new HTTP server instance
func New(opts Options) *Server {
	classifier := opts.Classifier
	if classifier == nil {
		classifier = classify.New(classify.Options{Logger: opts.Logger})
	}

	s := &Server{
		router:     chi.NewRouter(),
		converter:  opts.Converter,
		classifier: classifier,
		history:    opts.History,
		static:     opts.Static,
		config:     opts.Config,
		log:        logger.OrDiscard(opts.Logger),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", opts.Config.Host, opts.Config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  opts.Config.ReadTimeout,
		WriteTimeout: opts.Config.WriteTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	s.router.Use(middleware.Timeout(timeout))

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300, // Maximum value not ignored by any major browsers
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		r.Use(noCache)
		r.Post("/upload", s.handleUpload)
		r.Post("/process-document", s.handleProcessDocument)
		r.Post("/convert-to-ppt", s.handleConvertToPPT)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(noCache)
		r.Post("/classify", s.handleClassify)
		r.Get("/conversions", s.handleListConversions)
	})

	for prefix, dir := range s.static {
		s.mountStatic(prefix, dir)
	}
}

func (s *Server) mountStatic(prefix, dir string) {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	s.router.With(cacheStaticAssets).Get(prefix+"/*", fs.ServeHTTP)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.config.ReadTimeout,
		"write_timeout", s.config.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
