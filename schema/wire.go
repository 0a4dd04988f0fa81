// Package schema holds the wire types and shared identifiers exchanged
// between the terminal client and the command executor.
package schema

// WSPath is the WebSocket endpoint path served by the executor.
const WSPath = "/ws"

// DefaultPort is the executor's default listen port.
const DefaultPort = 3000

// SessionID identifies one executor-side connection session.
type SessionID string

// WireMessage is one frame sent from the executor to the client. Both
// fields are optional; a frame carries output text, a working directory
// update, or both.
type WireMessage struct {
	Output    *string `json:"output,omitempty"`
	CwdUpdate *string `json:"cwd_update,omitempty"`
}

// OutputMessage returns a frame carrying output text.
func OutputMessage(text string) WireMessage {
	return WireMessage{Output: &text}
}

// CwdMessage returns a frame carrying a working directory update.
func CwdMessage(dir string) WireMessage {
	return WireMessage{CwdUpdate: &dir}
}
