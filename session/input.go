package session

// InputKind classifies one keystroke from the terminal.
type InputKind int

const (
	// InputPrintable appends a rune to the line.
	InputPrintable InputKind = iota
	// InputCommit finalizes the current line.
	InputCommit
	// InputErase removes the last rune.
	InputErase
	// InputComplete triggers completion.
	InputComplete
	// InputInterrupt cancels the current line.
	InputInterrupt
)

// InputEvent is one classified keystroke.
type InputEvent struct {
	Kind InputKind
	R    rune
}

// Classify maps a decoded rune onto the closed set of input events.
// Control runes that drive no session behavior report ok false and are
// dropped before they reach the loop.
func Classify(r rune) (ev InputEvent, ok bool) {
	switch r {
	case '\r':
		return InputEvent{Kind: InputCommit}, true
	case '\b', 0x7f:
		return InputEvent{Kind: InputErase}, true
	case '\t':
		return InputEvent{Kind: InputComplete}, true
	case 0x03:
		return InputEvent{Kind: InputInterrupt}, true
	case '\n':
		// A bare line feed is an accepted terminator on some terminals
		// and is carried as printable text.
		return InputEvent{Kind: InputPrintable, R: r}, true
	}
	if r >= 0x20 {
		return InputEvent{Kind: InputPrintable, R: r}, true
	}
	return InputEvent{}, false
}
