package terminal

import (
	"io"
	"strings"
)

// Renderer draws session output on a tty in raw mode. Raw mode clears
// OPOST, so a bare LF moves the cursor down without returning it to
// column zero; Write restores the CR, everything else passes through
// untouched.
type Renderer struct {
	out io.Writer
}

// NewRenderer returns a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Write renders text, inserting a CR before every LF that lacks one.
// Executor subprocess output keeps the bare LFs it was born with.
func (r *Renderer) Write(text string) {
	_, _ = io.WriteString(r.out, crlf(text))
}

// crlf normalizes bare LF to CRLF. CRLF pairs already present stay as
// they are.
func crlf(text string) string {
	if !strings.Contains(text, "\n") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + strings.Count(text, "\n"))
	prev := byte(0)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' && prev != '\r' {
			b.WriteByte('\r')
		}
		b.WriteByte(c)
		prev = c
	}
	return b.String()
}

// ClearView wipes the screen and homes the cursor.
func (r *Renderer) ClearView() {
	_, _ = io.WriteString(r.out, "\x1b[2J\x1b[H")
}

// SetInputEnabled shows the cursor while input is live and hides it
// while the session waits on the executor.
func (r *Renderer) SetInputEnabled(enabled bool) {
	if enabled {
		_, _ = io.WriteString(r.out, "\x1b[?25h")
		return
	}
	_, _ = io.WriteString(r.out, "\x1b[?25l")
}

// Focus is a no-op; a tty in raw mode already owns the keyboard.
func (r *Renderer) Focus() {}
