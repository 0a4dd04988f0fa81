// Package remsh assembles the interactive client and the command
// executor server from their parts. Commands are typed in a local
// terminal, travel over a WebSocket, and execute in a sandboxed
// interpreter on the server.
package remsh

import (
	"context"
	"fmt"

	"pkt.systems/pslog"

	"pkt.systems/remsh/httpapi"
	"pkt.systems/remsh/schema"
)

// ServerConfig configures the executor service.
type ServerConfig struct {
	// HTTP configures the listener and the command root directory.
	HTTP httpapi.Config
}

// Server hosts the executor: the command WebSocket plus the small HTTP
// surface around it.
type Server struct {
	cfg  ServerConfig
	http *httpapi.Server
}

// NewServer builds the executor server. A missing address falls back to
// the default executor port on all interfaces.
func NewServer(cfg ServerConfig) *Server {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = fmt.Sprintf(":%d", schema.DefaultPort)
	}
	return &Server{cfg: cfg, http: httpapi.NewServer(cfg.HTTP)}
}

// ListenAndServe serves until ctx is cancelled, then closes the live
// command sessions and shuts the listener down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	pslog.Ctx(ctx).Info("server start", "addr", s.cfg.HTTP.Addr, "root", s.cfg.HTTP.RootDir)
	return s.http.ListenAndServe(ctx)
}
