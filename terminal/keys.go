package terminal

import (
	"bufio"
	"io"
	"unicode/utf8"

	"pkt.systems/remsh/session"
)

// readInput decodes bytes from r into classified input events until r
// fails or the user types Ctrl-D, then closes out. CRLF pairs collapse to
// a single commit and escape sequences are swallowed whole; arrow keys
// and friends have no session meaning.
func readInput(r io.Reader, out chan<- session.InputEvent) {
	defer close(out)
	br := bufio.NewReader(r)
	lastWasCR := false
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		if lastWasCR {
			lastWasCR = false
			if b == '\n' {
				continue
			}
		}
		switch b {
		case 0x04:
			return
		case 0x1b:
			skipEscape(br)
			continue
		case '\r':
			lastWasCR = true
		}
		r := rune(b)
		if b >= utf8.RuneSelf {
			_ = br.UnreadByte()
			decoded, _, err := br.ReadRune()
			if err != nil {
				return
			}
			r = decoded
		}
		if ev, ok := session.Classify(r); ok {
			out <- ev
		}
	}
}

// skipEscape consumes the remainder of an escape sequence. CSI sequences
// run until a final byte with an eight byte guard; SS3 and plain alt
// chords are one byte.
func skipEscape(br *bufio.Reader) {
	b, err := br.ReadByte()
	if err != nil {
		return
	}
	if b != '[' {
		if b == 'O' {
			_, _ = br.ReadByte()
		}
		return
	}
	for i := 0; i < 8; i++ {
		c, err := br.ReadByte()
		if err != nil {
			return
		}
		if c >= 0x40 && c <= 0x7e {
			return
		}
	}
}
