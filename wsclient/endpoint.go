package wsclient

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"pkt.systems/remsh/schema"
)

// ParseEndpoint derives the executor WebSocket URL from looser user
// input. Accepted forms are ws and wss URLs, http and https URLs (the
// scheme security level is mirrored onto ws or wss), and bare
// host[:port]. A missing port defaults to the executor port and a
// missing or root path defaults to the socket path.
func ParseEndpoint(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", schema.ErrInvalidEndpoint
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "ws://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", schema.ErrInvalidEndpoint, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", schema.ErrInvalidEndpoint, u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", schema.ErrInvalidEndpoint)
	}
	if u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(schema.DefaultPort))
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = schema.WSPath
	}
	u.Fragment = ""
	return u.String(), nil
}
