package wsclient

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pkt.systems/remsh/schema"
)

var testUpgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// newWSServer upgrades every request and hands the connection to fn on
// the handler goroutine.
func newWSServer(t *testing.T, fn func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		fn(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func nextEvent(t *testing.T, m *Manager, timeout time.Duration) schema.ConnEvent {
	t.Helper()
	select {
	case ev := <-m.Events():
		return ev
	case <-time.After(timeout):
		t.Fatalf("no connection event within %v", timeout)
		return schema.ConnEvent{}
	}
}

func expectNoEvent(t *testing.T, m *Manager, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-m.Events():
		t.Fatalf("unexpected %s event", ev.Type)
	case <-time.After(wait):
	}
}

func TestManagerConnectAndExchange(t *testing.T) {
	srv := newWSServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"output":"hello"}`))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"cwd_update":"`+string(data)+`"}`))
		_, _, _ = conn.ReadMessage()
	})
	m := New(Config{URL: wsURL(srv), RetryDelay: 50 * time.Millisecond})
	defer m.Close()

	m.Connect()
	if ev := nextEvent(t, m, 2*time.Second); ev.Type != schema.ConnOpened {
		t.Fatalf("first event = %s, want opened", ev.Type)
	}
	if got := m.State(); got != schema.ConnConnected {
		t.Fatalf("State() = %s, want connected", got)
	}

	ev := nextEvent(t, m, 2*time.Second)
	if ev.Type != schema.ConnMessage || ev.Message == nil || ev.Message.Output == nil {
		t.Fatalf("second event = %+v, want output message", ev)
	}
	if *ev.Message.Output != "hello" {
		t.Fatalf("output = %q, want %q", *ev.Message.Output, "hello")
	}

	if err := m.Send("/tmp"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	ev = nextEvent(t, m, 2*time.Second)
	if ev.Type != schema.ConnMessage || ev.Message == nil || ev.Message.CwdUpdate == nil {
		t.Fatalf("third event = %+v, want cwd message", ev)
	}
	if *ev.Message.CwdUpdate != "/tmp" {
		t.Fatalf("cwd_update = %q, want %q", *ev.Message.CwdUpdate, "/tmp")
	}
}

func TestManagerSendWhileDisconnected(t *testing.T) {
	m := New(Config{URL: "ws://127.0.0.1:1/ws"})
	defer m.Close()
	if err := m.Send("ls"); !errors.Is(err, schema.ErrNotConnected) {
		t.Fatalf("Send err = %v, want ErrNotConnected", err)
	}
}

func TestManagerSendAfterClose(t *testing.T) {
	m := New(Config{URL: "ws://127.0.0.1:1/ws"})
	m.Close()
	if err := m.Send("ls"); !errors.Is(err, schema.ErrManagerClosed) {
		t.Fatalf("Send err = %v, want ErrManagerClosed", err)
	}
}

func TestManagerSynthesizesParseErrorFrame(t *testing.T) {
	srv := newWSServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_, _, _ = conn.ReadMessage()
	})
	m := New(Config{URL: wsURL(srv)})
	defer m.Close()

	m.Connect()
	if ev := nextEvent(t, m, 2*time.Second); ev.Type != schema.ConnOpened {
		t.Fatalf("first event = %s, want opened", ev.Type)
	}
	ev := nextEvent(t, m, 2*time.Second)
	if ev.Type != schema.ConnMessage || ev.Message == nil || ev.Message.Output == nil {
		t.Fatalf("event = %+v, want synthetic output message", ev)
	}
	if !strings.Contains(*ev.Message.Output, "parse error") {
		t.Fatalf("synthetic output = %q, want parse error text", *ev.Message.Output)
	}
}

func TestManagerConnectWhileConnectedIsNoOp(t *testing.T) {
	var dials int32
	srv := newWSServer(t, func(conn *websocket.Conn) {
		atomic.AddInt32(&dials, 1)
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	})
	m := New(Config{URL: wsURL(srv), RetryDelay: 50 * time.Millisecond})
	defer m.Close()

	m.Connect()
	if ev := nextEvent(t, m, 2*time.Second); ev.Type != schema.ConnOpened {
		t.Fatalf("first event = %s, want opened", ev.Type)
	}
	m.Connect()
	expectNoEvent(t, m, 300*time.Millisecond)
	if got := atomic.LoadInt32(&dials); got != 1 {
		t.Fatalf("dials = %d, want 1", got)
	}
}

func TestManagerReconnectsAfterServerClose(t *testing.T) {
	var dials int32
	srv := newWSServer(t, func(conn *websocket.Conn) {
		n := atomic.AddInt32(&dials, 1)
		if n == 1 {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "redeploy"), time.Now().Add(time.Second))
			_ = conn.Close()
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"output":"back"}`))
		_, _, _ = conn.ReadMessage()
	})
	m := New(Config{URL: wsURL(srv), RetryDelay: 50 * time.Millisecond})
	defer m.Close()

	m.Connect()
	if ev := nextEvent(t, m, 2*time.Second); ev.Type != schema.ConnOpened {
		t.Fatalf("first event = %s, want opened", ev.Type)
	}
	ev := nextEvent(t, m, 2*time.Second)
	if ev.Type != schema.ConnClosed {
		t.Fatalf("second event = %s, want closed", ev.Type)
	}
	if ev.Code != websocket.CloseGoingAway || ev.Reason != "redeploy" {
		t.Fatalf("close detail = %d %q, want %d %q", ev.Code, ev.Reason, websocket.CloseGoingAway, "redeploy")
	}
	if ev := nextEvent(t, m, 2*time.Second); ev.Type != schema.ConnOpened {
		t.Fatalf("post-retry event = %s, want opened", ev.Type)
	}
	ev = nextEvent(t, m, 2*time.Second)
	if ev.Type != schema.ConnMessage || ev.Message == nil || ev.Message.Output == nil || *ev.Message.Output != "back" {
		t.Fatalf("post-retry message = %+v, want output %q", ev, "back")
	}
}

func TestManagerDisconnectCancelsPendingReconnect(t *testing.T) {
	var dials int32
	srv := newWSServer(t, func(conn *websocket.Conn) {
		atomic.AddInt32(&dials, 1)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
		_ = conn.Close()
	})
	m := New(Config{URL: wsURL(srv), RetryDelay: 100 * time.Millisecond})
	defer m.Close()

	m.Connect()
	if ev := nextEvent(t, m, 2*time.Second); ev.Type != schema.ConnOpened {
		t.Fatalf("first event = %s, want opened", ev.Type)
	}
	if ev := nextEvent(t, m, 2*time.Second); ev.Type != schema.ConnClosed {
		t.Fatalf("second event = %s, want closed", ev.Type)
	}
	m.Disconnect()
	time.Sleep(400 * time.Millisecond)
	if got := atomic.LoadInt32(&dials); got != 1 {
		t.Fatalf("dials = %d after disconnect, want 1", got)
	}
	expectNoEvent(t, m, 100*time.Millisecond)
}

func TestManagerClosesDeadSocket(t *testing.T) {
	srv := newWSServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
		_ = conn.Close()
	})
	m := New(Config{URL: wsURL(srv), RetryDelay: time.Hour})
	defer m.Close()

	m.Connect()
	if ev := nextEvent(t, m, 2*time.Second); ev.Type != schema.ConnOpened {
		t.Fatalf("first event = %s, want opened", ev.Type)
	}
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		t.Fatalf("no connection handle while connected")
	}
	if ev := nextEvent(t, m, 2*time.Second); ev.Type != schema.ConnClosed {
		t.Fatalf("second event = %s, want closed", ev.Type)
	}
	// The closure handler released the socket before reporting it.
	if err := conn.UnderlyingConn().SetReadDeadline(time.Now()); !errors.Is(err, net.ErrClosed) {
		t.Fatalf("dead socket left open: SetReadDeadline err = %v, want net.ErrClosed", err)
	}
}

func TestManagerDialFailureEmitsErroredThenClosed(t *testing.T) {
	m := New(Config{URL: "ws://127.0.0.1:1/ws", RetryDelay: time.Hour})
	defer m.Close()

	m.Connect()
	ev := nextEvent(t, m, 5*time.Second)
	if ev.Type != schema.ConnErrored || ev.Err == nil {
		t.Fatalf("first event = %+v, want errored with err", ev)
	}
	ev = nextEvent(t, m, time.Second)
	if ev.Type != schema.ConnClosed {
		t.Fatalf("second event = %s, want closed", ev.Type)
	}
	if got := m.State(); got != schema.ConnDisconnected {
		t.Fatalf("State() = %s, want disconnected", got)
	}
}

func TestManagerIgnoresStaleClose(t *testing.T) {
	var dials int32
	srv := newWSServer(t, func(conn *websocket.Conn) {
		atomic.AddInt32(&dials, 1)
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	})
	m := New(Config{URL: wsURL(srv), RetryDelay: 50 * time.Millisecond})
	defer m.Close()

	m.Connect()
	if ev := nextEvent(t, m, 2*time.Second); ev.Type != schema.ConnOpened {
		t.Fatalf("first event = %s, want opened", ev.Type)
	}
	// Intentional teardown: the dying socket's close callback is stale
	// and must neither emit events nor arm a reconnect.
	m.Disconnect()
	time.Sleep(300 * time.Millisecond)
	expectNoEvent(t, m, 100*time.Millisecond)
	if got := atomic.LoadInt32(&dials); got != 1 {
		t.Fatalf("dials = %d after disconnect, want 1", got)
	}
}
