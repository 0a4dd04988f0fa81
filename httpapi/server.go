// Package httpapi serves the executor side: the WebSocket command
// socket, a hello endpoint, and the index page.
package httpapi

import (
	"context"
	_ "embed"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"pkt.systems/pslog"
)

//go:embed assets/index.html
var indexHTML []byte

const helloBody = "Hello, World from remsh executor API!"

const shutdownTimeout = 10 * time.Second

// Server serves the executor endpoints and tracks live command sessions
// so shutdown can close them.
type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
	sessions *sessionRegistry
}

// NewServer returns a server for cfg.
func NewServer(cfg Config) *Server {
	return &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			// The socket is origin-agnostic; any client may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sessions: newSessionRegistry(),
	}
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleSocket)
	mux.HandleFunc("/api/hello", s.handleHello)
	return withRequestLogging(mux)
}

// ListenAndServe runs the server until ctx is cancelled, then closes the
// live command sessions and shuts the listener down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	logger := pslog.Ctx(ctx)
	server := &http.Server{
		Addr:     s.cfg.Addr,
		Handler:  s.Handler(),
		ErrorLog: pslog.LogLoggerWithLevel(logger, pslog.ErrorLevel),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		logger.Info("http server shutting down", "sessions", s.sessions.count())
		s.sessions.closeAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http server shutdown incomplete", "err", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, helloBody)
}
