// Package terminal adapts the local tty to the session: it switches the
// tty to raw mode, decodes keystrokes into classified input events, and
// renders session output with the line discipline a raw tty needs.
package terminal

import (
	"os"

	"golang.org/x/term"

	"pkt.systems/remsh/schema"
	"pkt.systems/remsh/session"
)

// Terminal holds a tty in raw mode.
type Terminal struct {
	in   *os.File
	fd   int
	prev *term.State
	keys chan session.InputEvent
}

// Open switches in to raw mode and starts decoding keystrokes. Callers
// must Close to restore the tty.
func Open(in *os.File) (*Terminal, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, schema.ErrNotTerminal
	}
	prev, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	t := &Terminal{
		in:   in,
		fd:   fd,
		prev: prev,
		keys: make(chan session.InputEvent, 16),
	}
	go readInput(in, t.keys)
	return t, nil
}

// Keys returns the classified input stream. The channel closes on tty
// EOF or Ctrl-D.
func (t *Terminal) Keys() <-chan session.InputEvent {
	return t.keys
}

// Close restores the tty to its previous mode.
func (t *Terminal) Close() error {
	if t.prev == nil {
		return nil
	}
	prev := t.prev
	t.prev = nil
	return term.Restore(t.fd, prev)
}
