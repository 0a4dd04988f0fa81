package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"pkt.systems/pslog"

	"pkt.systems/remsh/internal/command"
	"pkt.systems/remsh/internal/format"
	"pkt.systems/remsh/internal/logx"
	"pkt.systems/remsh/schema"
)

const welcomeBanner = "Welcome to the remsh executor!\r\n"

const (
	pingInterval = 30 * time.Second
	pongWait     = 90 * time.Second
	writeWait    = 10 * time.Second
)

// handleSocket upgrades the request and runs one command session until
// the peer goes away.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	id := schema.SessionID(uuid.NewString())
	log := logx.WithConn(r.Context(), id).With("remote", clientIP(r))
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		log.Warn("ws upgrade failed", "err", err)
		return
	}
	sess := newWSSession(id, conn, command.New(s.cfg.RootDir))
	s.sessions.add(sess)
	log.Info("ws session start", "cwd", sess.interp.Cwd())
	defer func() {
		s.sessions.remove(id)
		sess.close()
		log.Info("ws session end")
	}()
	ctx := logx.ContextWithConnLogger(r.Context(), log, id)
	sess.run(ctx)
}

// wsSession is one connected client and its interpreter state. Frames
// are written from the run goroutine only; pings go through WriteControl
// which is safe alongside it.
type wsSession struct {
	id     schema.SessionID
	conn   *websocket.Conn
	interp *command.Interpreter

	done      chan struct{}
	closeOnce sync.Once
}

func newWSSession(id schema.SessionID, conn *websocket.Conn, interp *command.Interpreter) *wsSession {
	return &wsSession{
		id:     id,
		conn:   conn,
		interp: interp,
		done:   make(chan struct{}),
	}
}

// run greets the client and then answers command frames until the
// connection dies. Output frames are sent only when the response is
// non-empty; cwd frames only when the directory changed.
func (w *wsSession) run(ctx context.Context) {
	log := pslog.Ctx(ctx)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go w.pingLoop(log)

	if err := w.send(schema.OutputMessage(format.CleanOutput(welcomeBanner))); err != nil {
		log.Warn("ws greeting failed", "err", err)
		return
	}
	if err := w.send(schema.CwdMessage(w.interp.Cwd())); err != nil {
		log.Warn("ws greeting failed", "err", err)
		return
	}

	for {
		kind, data, err := w.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("ws read failed", "err", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			log.Debug("ws frame ignored", "kind", kind)
			continue
		}
		line := strings.TrimSpace(string(data))
		log.Info("command received", "line", line)
		output, changed := w.interp.Run(ctx, line)
		if output != "" {
			if err := w.send(schema.OutputMessage(format.CleanOutput(output))); err != nil {
				log.Warn("ws write failed", "err", err)
				return
			}
		}
		if changed {
			if err := w.send(schema.CwdMessage(w.interp.Cwd())); err != nil {
				log.Warn("ws write failed", "err", err)
				return
			}
		}
	}
}

func (w *wsSession) send(msg schema.WireMessage) error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(msg)
}

// pingLoop keeps idle connections alive until close releases it.
func (w *wsSession) pingLoop(log pslog.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			err := w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			if err != nil {
				log.Debug("ws ping failed", "err", err)
				return
			}
		}
	}
}

// close tears the connection down. Safe to call more than once and from
// any goroutine.
func (w *wsSession) close() {
	w.closeOnce.Do(func() {
		close(w.done)
		_ = w.conn.Close()
	})
}
