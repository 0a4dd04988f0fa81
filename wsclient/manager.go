// Package wsclient maintains the WebSocket channel to the executor. The
// manager owns the socket handle, redials on a fixed delay after every
// closure, and feeds parsed frames and lifecycle changes to the session
// as ordered events.
package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"pkt.systems/pslog"

	"pkt.systems/remsh/schema"
)

const (
	// retryDelay is the fixed wait before redialing after a closure.
	retryDelay = 5000 * time.Millisecond

	handshakeTimeout = 10 * time.Second
	closeGrace       = time.Second
)

// Config assembles a Manager.
type Config struct {
	// URL is the ws or wss endpoint of the executor. Use ParseEndpoint
	// to derive it from looser user input.
	URL string
	// RetryDelay overrides the reconnect delay. Zero means the default.
	RetryDelay time.Duration
	// Logger receives connection telemetry. Nil means the default
	// logger.
	Logger pslog.Logger
}

// Manager runs the connection lifecycle. Each dial attempt carries a
// generation number; callbacks from superseded sockets compare their
// generation and drop out, so a stale closure can never disturb a newer
// connection or schedule a spurious reconnect.
type Manager struct {
	url   string
	delay time.Duration
	log   pslog.Logger

	mu    sync.Mutex
	state schema.ConnState
	conn  *websocket.Conn
	gen   uint64
	retry *time.Timer

	events    chan schema.ConnEvent
	done      chan struct{}
	closeOnce sync.Once
}

// New returns a manager for url. The channel stays down until Connect.
func New(cfg Config) *Manager {
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = retryDelay
	}
	log := cfg.Logger
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	return &Manager{
		url:    cfg.URL,
		delay:  delay,
		log:    log.With("url", cfg.URL),
		state:  schema.ConnDisconnected,
		events: make(chan schema.ConnEvent, 16),
		done:   make(chan struct{}),
	}
}

// Events returns the ordered connection event stream. It is never
// closed; Close releases any blocked delivery instead.
func (m *Manager) Events() <-chan schema.ConnEvent {
	return m.events
}

// State returns the current connection state.
func (m *Manager) State() schema.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect opens the channel unless one is already open or opening. The
// dial runs in the background; the outcome arrives as events. A retry
// timer that fired during Close may still call this, so a closed
// manager never dials.
func (m *Manager) Connect() {
	select {
	case <-m.done:
		return
	default:
	}
	m.mu.Lock()
	if m.state != schema.ConnDisconnected {
		m.mu.Unlock()
		return
	}
	m.state = schema.ConnConnecting
	m.gen++
	gen := m.gen
	m.mu.Unlock()
	m.log.Debug("channel dialing", "gen", gen)
	go m.dial(gen)
}

// Disconnect tears the channel down and cancels any pending reconnect.
// It advances the generation so the closing socket's callbacks are
// ignored, and it emits no event; intentional teardown is not a failure.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	m.gen++
	conn := m.conn
	m.conn = nil
	m.state = schema.ConnDisconnected
	m.mu.Unlock()
	if conn == nil {
		return
	}
	deadline := time.Now().Add(closeGrace)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	_ = conn.Close()
	m.log.Info("channel disconnected")
}

// Close releases the manager for process exit. No events are delivered
// afterwards and the manager must not be reused.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.Disconnect()
		close(m.done)
	})
}

// Send transmits one command line as a text frame. The text is dropped
// with ErrNotConnected when no channel is open and with ErrManagerClosed
// after Close.
func (m *Manager) Send(text string) error {
	select {
	case <-m.done:
		return schema.ErrManagerClosed
	default:
	}
	m.mu.Lock()
	conn := m.conn
	connected := m.state == schema.ConnConnected
	m.mu.Unlock()
	if !connected || conn == nil {
		return schema.ErrNotConnected
	}
	return conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (m *Manager) dial(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, m.url, nil)

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		if err == nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		m.state = schema.ConnDisconnected
		m.armRetryLocked()
		m.mu.Unlock()
		m.log.Warn("channel dial failed", "gen", gen, "err", err)
		m.emit(schema.ConnEvent{Type: schema.ConnErrored, Err: err})
		m.emit(schema.ConnEvent{Type: schema.ConnClosed, Code: websocket.CloseAbnormalClosure, Reason: err.Error()})
		return
	}
	m.conn = conn
	m.state = schema.ConnConnected
	m.mu.Unlock()
	m.log.Info("channel connected", "gen", gen)
	m.emit(schema.ConnEvent{Type: schema.ConnOpened})
	m.readLoop(gen, conn)
}

// readLoop pumps frames until the socket dies, then reports the closure.
// It runs on the dial goroutine so events keep their arrival order.
func (m *Manager) readLoop(gen uint64, conn *websocket.Conn) {
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			m.handleClosed(gen, err)
			return
		}
		if kind != websocket.TextMessage {
			m.log.Debug("channel frame ignored", "kind", kind)
			continue
		}
		var msg schema.WireMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			m.log.Warn("channel frame unparseable", "err", err)
			msg = schema.OutputMessage(fmt.Sprintf("parse error: %v\r\n", err))
		}
		m.emit(schema.ConnEvent{Type: schema.ConnMessage, Message: &msg})
	}
}

// handleClosed releases the dead socket, records the closure, and arms
// exactly one reconnect for it. Closures from superseded generations are
// dropped.
func (m *Manager) handleClosed(gen uint64, err error) {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.state = schema.ConnDisconnected
	conn := m.conn
	m.conn = nil
	m.armRetryLocked()
	m.mu.Unlock()
	if conn != nil {
		// The read error already ended the protocol; only the
		// descriptor is left to release.
		_ = conn.Close()
	}

	code, reason := closeDetail(err)
	m.log.Warn("channel closed", "gen", gen, "code", code, "reason", reason)
	if !isExpectedClose(err) {
		m.emit(schema.ConnEvent{Type: schema.ConnErrored, Err: err})
	}
	m.emit(schema.ConnEvent{Type: schema.ConnClosed, Code: code, Reason: reason})
}

// armRetryLocked schedules the next Connect. A previously armed timer is
// replaced, never stacked. Callers hold m.mu.
func (m *Manager) armRetryLocked() {
	if m.retry != nil {
		m.retry.Stop()
	}
	m.retry = time.AfterFunc(m.delay, m.Connect)
}

func (m *Manager) emit(ev schema.ConnEvent) {
	select {
	case m.events <- ev:
	case <-m.done:
	}
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

func closeDetail(err error) (int, string) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text
	}
	return websocket.CloseAbnormalClosure, err.Error()
}
