// Package api provides the HTTP API server and handlers for ICGDB.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/icgdb/icgdb-server/internal/domain"
	"github.com/icgdb/icgdb-server/internal/media/images"
	"github.com/icgdb/icgdb-server/internal/service"
)

// Services groups the business services used by the API server.
type Services struct {
	Categories *service.CategoryService
	Games      *service.GameService
	Users      *service.UserService
	Auth       *service.AuthService
	Search     *service.SearchService
	Names      *service.NameRegistry
}

// Options tunes the HTTP surface.
type Options struct {
	Version            string
	CORSAllowedOrigins []string
	// MaxUploadBytes bounds multipart picture bodies.
	MaxUploadBytes int64
	// AuthRateLimiter throttles login routes per client IP. Nil uses a default.
	AuthRateLimiter *RateLimiter
	// UploadRateLimiter throttles picture uploads per client IP. Nil uses a default.
	UploadRateLimiter *RateLimiter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services          *Services
	pictures          *images.Storage
	router            *chi.Mux
	api               huma.API
	authRateLimiter   *RateLimiter
	uploadRateLimiter *RateLimiter
	maxUpload         int64
	logger            *slog.Logger
}

// NewServer creates the HTTP server with every route configured.
func NewServer(services *Services, pictures *images.Storage, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if len(opts.CORSAllowedOrigins) == 0 {
		opts.CORSAllowedOrigins = []string{"*"}
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = service.DefaultMaxPictureBytes
	}
	if opts.AuthRateLimiter == nil {
		opts.AuthRateLimiter = NewRateLimiter(20, time.Minute, 10)
	}
	if opts.UploadRateLimiter == nil {
		opts.UploadRateLimiter = NewRateLimiter(30, time.Minute, 10)
	}

	s := &Server{
		services:          services,
		pictures:          pictures,
		router:            chi.NewRouter(),
		authRateLimiter:   opts.AuthRateLimiter,
		uploadRateLimiter: opts.UploadRateLimiter,
		maxUpload:         opts.MaxUploadBytes,
		logger:            logger,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(authMiddleware(services.Auth))

	s.api = humachi.New(s.router, newHumaConfig(opts.Version))
	RegisterErrorHandler()

	s.registerRoutes()
	return s
}

// newHumaConfig is shared by the server and its tests.
func newHumaConfig(version string) huma.Config {
	cfg := huma.DefaultConfig("ICGDB API", version)
	cfg.Info.Description = "Video game catalog: games, genres and publishers."
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	cfg.Transformers = append(cfg.Transformers, EnvelopeTransformer)
	return cfg
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerNameRoutes()
	s.registerCategoryRoutes(domain.KindGenre, "genres", "Genres")
	s.registerCategoryRoutes(domain.KindPublisher, "publishers", "Publishers")
	s.registerGameRoutes()
	s.registerPictureRoutes()
	s.registerSearchRoutes()
	s.registerExportRoutes()
	s.registerXMLRoutes()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops the rate limiters' background eviction.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
	s.uploadRateLimiter.Stop()
}

// API exposes the huma API, for OpenAPI generation and tests.
func (s *Server) API() huma.API {
	return s.api
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
