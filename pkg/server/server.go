package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/vroute/pkg/router"
)

// NavigatorFactory creates the Navigator for one WebSocket connection.
type NavigatorFactory func(r router.Renderer) *router.Navigator

// Server serves a route table over HTTP and WebSocket.
type Server struct {
	config    *Config
	resolver  *router.Resolver
	navigator NavigatorFactory
	gatherer  prometheus.Gatherer
	logger    *slog.Logger

	mux      chi.Router
	upgrader websocket.Upgrader

	mu         sync.Mutex
	httpServer *http.Server
	conns      sync.WaitGroup
	closing    chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer serves g on /metrics (default: prometheus.DefaultGatherer).
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// New creates a Server. newNavigator is called once per WebSocket connection.
func New(cfg *Config, resolver *router.Resolver, newNavigator NavigatorFactory, opts ...Option) *Server {
	s := &Server{
		config:    cfg.withDefaults(),
		resolver:  resolver,
		navigator: newNavigator,
		gatherer:  prometheus.DefaultGatherer,
		logger:    slog.Default().With("component", "server"),
		closing:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.config.CheckOrigin,
	}
	s.mux = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/routes", s.handleRoutes)
	r.Get("/resolve", s.handleResolve)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.handleWebSocket)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe listens on the configured address and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("server starting", "address", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, closes WebSocket connections and waits
// for in-flight requests, bounded by ctx and Config.ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	srv := s.httpServer
	select {
	case <-s.closing:
	default:
		close(s.closing)
	}
	s.mu.Unlock()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("server shutdown complete")
	return nil
}
