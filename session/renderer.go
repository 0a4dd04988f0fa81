package session

// Renderer is the display the session draws on. Write accepts raw text
// including ANSI escape sequences; the session never reads display state
// back.
type Renderer interface {
	// Write renders text verbatim.
	Write(text string)
	// ClearView wipes the display and homes the cursor.
	ClearView()
	// SetInputEnabled reflects whether the session accepts keystrokes.
	SetInputEnabled(enabled bool)
	// Focus directs subsequent input to the display, where that applies.
	Focus()
}

// Channel is the duplex command channel the session talks through.
type Channel interface {
	// Connect opens the channel. Opening an already open channel is a
	// no-op.
	Connect()
	// Disconnect closes the channel and cancels any pending reconnect.
	Disconnect()
	// Send transmits one command line. It fails with ErrNotConnected
	// when no channel is open.
	Send(text string) error
}
