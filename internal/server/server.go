// -----------------------------------------------------------------------
// HTTP Server - lifecycle around the standard library server
// -----------------------------------------------------------------------

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/responsum/internal/app"
)

// Server wraps the HTTP server with route registration and graceful
// shutdown.
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server
}

// New creates a server for the wired application.
func New(a *app.App) *Server {
	s := &Server{
		app:    a,
		router: http.NewServeMux(),
	}

	s.registerRoutes()

	addr := fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.app.Logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Addr returns the address the server binds to.
func (s *Server) Addr() string {
	return s.server.Addr
}
