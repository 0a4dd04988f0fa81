package schema

// ConnState describes the client connection lifecycle.
type ConnState string

const (
	// ConnDisconnected means no channel is open and none is being opened.
	ConnDisconnected ConnState = "disconnected"
	// ConnConnecting means a dial is in flight.
	ConnConnecting ConnState = "connecting"
	// ConnConnected means the channel is open.
	ConnConnected ConnState = "connected"
)

// ConnEventType tags connection events delivered to the session loop.
type ConnEventType string

const (
	// ConnOpened reports a successfully established channel.
	ConnOpened ConnEventType = "opened"
	// ConnMessage carries one parsed frame from the executor.
	ConnMessage ConnEventType = "message"
	// ConnClosed reports that the channel closed for any reason.
	ConnClosed ConnEventType = "closed"
	// ConnErrored reports a channel failure. It always precedes the
	// ConnClosed event for the same channel.
	ConnErrored ConnEventType = "errored"
)

// ConnEvent is one connection lifecycle or message event. Events are
// delivered in the order they occurred.
type ConnEvent struct {
	Type    ConnEventType
	Message *WireMessage
	Code    int
	Reason  string
	Err     error
}
