package terminal

import (
	"bytes"
	"testing"
)

func TestRendererWriteKeepsTerminalReadyText(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.Write("hello \x1b[32mworld\x1b[0m\r\n")
	if got := buf.String(); got != "hello \x1b[32mworld\x1b[0m\r\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestRendererWriteNormalizesBareLF(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trailing lf gains cr", "user\n", "user\r\n"},
		{"interior lf gains cr", "one\ntwo", "one\r\ntwo"},
		{"multi line", "a\nb\nc\n", "a\r\nb\r\nc\r\n"},
		{"crlf untouched", "done\r\n", "done\r\n"},
		{"mixed", "a\r\nb\nc", "a\r\nb\r\nc"},
		{"no newline untouched", "plain", "plain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewRenderer(&buf).Write(tc.in)
			if got := buf.String(); got != tc.want {
				t.Fatalf("Write(%q) wrote %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRendererWritePromptStartsAtColumnZero(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.Write("user\n")
	r.Write("\x1b[32m/home\x1b[0m$ ")
	if got := buf.String(); got != "user\r\n\x1b[32m/home\x1b[0m$ " {
		t.Fatalf("rendered %q, want a CR before the prompt", got)
	}
}

func TestRendererClearView(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).ClearView()
	if got := buf.String(); got != "\x1b[2J\x1b[H" {
		t.Fatalf("output = %q, want clear and home", got)
	}
}

func TestRendererSetInputEnabledTogglesCursor(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.SetInputEnabled(false)
	if got := buf.String(); got != "\x1b[?25l" {
		t.Fatalf("disable output = %q, want hide cursor", got)
	}
	buf.Reset()
	r.SetInputEnabled(true)
	if got := buf.String(); got != "\x1b[?25h" {
		t.Fatalf("enable output = %q, want show cursor", got)
	}
}
