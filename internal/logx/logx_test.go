package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"pkt.systems/pslog"
)

func TestWithConnAddsField(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	ctx := pslog.ContextWithLogger(context.Background(), logger)
	WithConn(ctx, "abc-123").Info("hello")

	entry := capture.firstEntry(t)
	if entry["conn"] != "abc-123" {
		t.Fatalf("expected conn field, got %+v", entry)
	}
}

func TestWithConnSkipsEmptyID(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	ctx := pslog.ContextWithLogger(context.Background(), logger)
	WithConn(ctx, "").Info("hello")

	entry := capture.firstEntry(t)
	if _, ok := entry["conn"]; ok {
		t.Fatalf("did not expect conn field, got %+v", entry)
	}
}

func TestWithConnDeduplicatesMarkedContext(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	ctx := ContextWithConnLogger(context.Background(), logger.With("conn", "abc-123"), "abc-123")
	WithConn(ctx, "abc-123").Info("hello")

	if got := strings.Count(capture.buf.String(), `"conn"`); got != 1 {
		t.Fatalf("conn field written %d times, want 1: %s", got, capture.buf.String())
	}
}

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) firstEntry(t *testing.T) map[string]any {
	t.Helper()
	data := c.buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		idx = len(data)
	}
	line := bytes.TrimSpace(data[:idx])
	entry := map[string]any{}
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	return entry
}
