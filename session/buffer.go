package session

// LineBuffer holds the command line being edited. It only ever grows at
// the end and shrinks from the end; there is no cursor movement.
type LineBuffer struct {
	buf []rune
}

// Append adds one rune to the end of the line.
func (b *LineBuffer) Append(r rune) {
	b.buf = append(b.buf, r)
}

// Backspace removes the last rune and reports whether one was removed.
// On an empty buffer it is a no-op.
func (b *LineBuffer) Backspace() bool {
	if len(b.buf) == 0 {
		return false
	}
	b.buf = b.buf[:len(b.buf)-1]
	return true
}

// Replace swaps the whole line for value.
func (b *LineBuffer) Replace(value string) {
	b.buf = append(b.buf[:0], []rune(value)...)
}

// Reset clears the line.
func (b *LineBuffer) Reset() {
	b.buf = b.buf[:0]
}

// Value returns the current line.
func (b *LineBuffer) Value() string {
	return string(b.buf)
}

// Len returns the number of runes in the line.
func (b *LineBuffer) Len() int {
	return len(b.buf)
}
