package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/r3d91ll/tempchart/pkg/config"
	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	// Host is the interface to bind to (default "localhost").
	Host string
	// Port defaults to 8081.
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// CORSOrigins lists the origins allowed for CORS and websocket upgrades.
	CORSOrigins []string

	EnableLogging bool
}

// DefaultServerConfig returns the defaults for the API server.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:          "localhost",
		Port:          8081,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		EnableLogging: true,
	}
}

// FromSettings builds a ServerConfig from the server section of the config
// file. Timeouts keep their defaults.
func FromSettings(s config.ServerConfig) *ServerConfig {
	cfg := DefaultServerConfig()
	if s.Host != "" {
		cfg.Host = s.Host
	}
	if s.Port != 0 {
		cfg.Port = s.Port
	}
	cfg.CORSOrigins = append([]string(nil), s.CORSOrigins...)
	cfg.EnableLogging = s.EnableLogging
	return cfg
}

// Server is the HTTP API server.
type Server struct {
	router *Router
	config *ServerConfig

	mu         sync.RWMutex
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server; zero fields of config take their defaults.
func NewServer(config *ServerConfig) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	def := DefaultServerConfig()
	if config.Host == "" {
		config.Host = def.Host
	}
	if config.Port == 0 {
		config.Port = def.Port
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = def.ReadTimeout
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = def.IdleTimeout
	}
	return &Server{router: NewRouter(), config: config}
}

// Address returns the bound address while running, else the configured one.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.configuredAddress()
}

func (s *Server) configuredAddress() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Router returns the router handlers register on.
func (s *Server) Router() *Router {
	return s.router
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Handler returns the router wrapped in the middleware chain. The request ID
// is assigned first so the logger and the panic handler can report it.
func (s *Server) Handler() http.Handler {
	middlewares := []Middleware{RequestIDMiddleware, RecoveryMiddleware}
	if s.config.EnableLogging {
		middlewares = append(middlewares, LoggingMiddleware)
	}
	if len(s.config.CORSOrigins) > 0 {
		middlewares = append(middlewares, CORSMiddleware(s.config.CORSOrigins))
		SetUpgraderCheckOrigin(newOriginSet(s.config.CORSOrigins).checkRequest)
	}
	middlewares = append(middlewares, ContentTypeMiddleware)
	return Chain(s.router, middlewares...)
}

// Start binds the listener and serves in the background. A bind failure is
// returned as SERVER_START_FAILED.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr := s.configuredAddress()
	if s.listener != nil {
		return cerrors.New(cerrors.ErrServerStartFailed, cerrors.CategoryNetwork, "server is already running").
			WithContext("address", addr)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return cerrors.AttachSuggestions(
			cerrors.NetworkWrap(err, cerrors.ErrServerStartFailed, "server failed to start").
				WithContext("address", addr))
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.httpServer, s.listener = srv, ln

	go func() {
		log.Printf("[api] listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[api] server error: %v", err)
			s.mu.Lock()
			if s.httpServer == srv {
				s.httpServer, s.listener = nil, nil
			}
			s.mu.Unlock()
		}
	}()
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires. Stopping a stopped server is a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer, s.listener = nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	log.Printf("[api] shutting down")
	return srv.Shutdown(ctx)
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listener != nil
}
