package schema

import "errors"

var (
	// ErrNotConnected indicates a send was attempted without an open channel.
	ErrNotConnected = errors.New("not connected")
	// ErrInvalidEndpoint indicates an executor URL that cannot be dialed.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrNotTerminal indicates stdin is not an interactive terminal.
	ErrNotTerminal = errors.New("stdin is not a terminal")
	// ErrManagerClosed indicates the connection manager was shut down.
	ErrManagerClosed = errors.New("connection manager closed")
)
