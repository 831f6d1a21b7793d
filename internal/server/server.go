// package server contains middleware & handlers for the now-playing web dashboard
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/auth"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/desertthunder/nowplaying/internal/tasks"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows the path patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Session is the part of auth.Guard the server drives.
type Session interface {
	Authorize(ctx context.Context, code string) error
	State() auth.State
}

// AuthURLBuilder builds the provider's consent page URL. Implemented by auth.OAuthExchanger.
type AuthURLBuilder interface {
	AuthCodeURL(state string) string
}

// Options holds the server's collaborators.
type Options struct {
	Session Session
	AuthURL AuthURLBuilder
	Engine  tasks.Engine
	Logger  *log.Logger

	// SecureCookies marks the state cookie Secure; enable behind HTTPS.
	SecureCookies bool
}

// Server serves the dashboard, its JSON twin, and the login flow.
type Server struct {
	router *BasicRouter
	server *http.Server
	logger *log.Logger
}

// New creates a server with logging and recovery middleware and all routes registered.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = shared.WithLogger(logger, "component", "server")

	router := NewBasicRouter()
	router.Use(Logging(shared.SlogLogger(logger)), Recovery(logger))

	h := &dashboardHandler{
		session: opts.Session,
		authURL: opts.AuthURL,
		engine:  opts.Engine,
		logger:  logger,
		secure:  opts.SecureCookies,
	}
	router.Handle(http.MethodGet, "/{$}", http.HandlerFunc(h.index))
	router.Handle(http.MethodGet, "/login", http.HandlerFunc(h.login))
	router.Handle(http.MethodGet, "/callback", http.HandlerFunc(h.callback))
	router.Handle(http.MethodGet, "/api/now", http.HandlerFunc(h.apiNow))
	router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(h.healthz))

	return &Server{router: router, logger: logger}
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on address and serves in the background.
//
// Listen errors are returned immediately. The channel reports a serve failure and is closed when the server stops.
func (s *Server) Start(ctx context.Context, address string) (<-chan error, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       90 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		err := s.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("listening", "addr", listener.Addr().String())
	return errCh, nil
}

// Shutdown stops the server gracefully, closing it outright if ctx expires first.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	if err := s.server.Shutdown(ctx); err != nil {
		_ = s.server.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
