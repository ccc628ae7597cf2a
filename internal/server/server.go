package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/desertthunder/musicapp/internal/auth"
	"github.com/desertthunder/musicapp/internal/services"
	"github.com/desertthunder/musicapp/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Route binds a method and path pattern to a handler and its route-specific middleware.
type Route struct {
	Method     string
	Path       string
	Handler    http.HandlerFunc
	Middleware []Middleware
}

// Handler defines the interface for groups of HTTP endpoints.
type Handler interface {
	Routes() []Route // Routes returns the routes this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Services groups the application services the HTTP layer calls into.
type Services struct {
	Artists   *services.ArtistService
	Songs     *services.SongService
	Social    *services.SocialService
	Playlists *services.PlaylistService
	Users     *services.UserService
}

// Options configures a [Server].
type Options struct {
	Config   *shared.Config
	Services Services
	Tokens   *auth.TokenIssuer
	Logger   *log.Logger
	// Registry receives the HTTP metrics; a fresh registry is used when nil.
	Registry *prometheus.Registry
}

// Server wires the handlers, middleware and static file routes into one [http.Handler].
type Server struct {
	config *shared.Config
	router *BasicRouter
	logger *log.Logger
}

// New builds the routing tree for the configured services.
func New(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	logger := shared.WithLogger(opts.Logger, "component", "http")
	metrics := NewMetrics(opts.Registry)
	cfg := opts.Config

	var users UserLookup
	if opts.Services.Users != nil {
		users = opts.Services.Users
	}

	router := NewBasicRouter()
	router.Use(
		Recoverer(logger),
		RequestLogger(logger),
		metrics.Middleware,
		CORS(cfg.Server.CORSOrigins),
		Session(opts.Tokens, users, cfg.Auth.CookieName),
	)

	cookies := sessionCookies{
		name:   cfg.Auth.CookieName,
		secure: cfg.Auth.CookieSecure,
		ttl:    cfg.Auth.SessionTTL(),
	}
	resetLimit := NewRateLimiter(cfg.Auth.ResetRequestsPerMinute, time.Minute)

	router.Handler(NewArtistHandler(opts.Services.Artists, logger))
	router.Handler(NewSongHandler(opts.Services.Songs, opts.Services.Social, logger))
	router.Handler(NewPlaylistHandler(opts.Services.Playlists, logger))
	router.Handler(NewAccountHandler(opts.Services.Users, opts.Tokens, cookies, resetLimit, logger))

	router.Handle(http.MethodGet, "/health", http.HandlerFunc(health))
	router.Handle(http.MethodGet, "/metrics", metrics.Handler())

	if cfg.Storage.Provider == "local" {
		router.Static(cfg.Storage.ImageURLPrefix, cfg.Storage.ImageFolder)
		router.Static(cfg.Storage.SongURLPrefix, cfg.Storage.SongFolder)
	}

	return &Server{config: cfg, router: router, logger: logger}
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on the configured address until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// trimPrefix normalises a URL prefix to "/name" without the trailing slash.
func trimPrefix(prefix string) string {
	return "/" + strings.Trim(prefix, "/")
}
