package remsh

import (
	"context"
	"os"

	"pkt.systems/pslog"

	"pkt.systems/remsh/session"
	"pkt.systems/remsh/terminal"
	"pkt.systems/remsh/wsclient"
)

// ClientConfig configures the interactive client.
type ClientConfig struct {
	// URL locates the executor. Looser forms are accepted, see
	// wsclient.ParseEndpoint.
	URL string
	// Lexicon overrides the completion word list. Empty means the
	// session default.
	Lexicon []string
}

// Client wires the local tty, the executor channel, and the session
// loop together.
type Client struct {
	endpoint string
	lexicon  []string
}

// NewClient resolves cfg.URL and returns a runnable client.
func NewClient(cfg ClientConfig) (*Client, error) {
	endpoint, err := wsclient.ParseEndpoint(cfg.URL)
	if err != nil {
		return nil, err
	}
	return &Client{endpoint: endpoint, lexicon: cfg.Lexicon}, nil
}

// Endpoint returns the resolved executor URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Run puts stdin in raw mode and drives the session until ctx is
// cancelled or the user leaves with Ctrl-D. The tty is restored before
// Run returns.
func (c *Client) Run(ctx context.Context) error {
	log := pslog.Ctx(ctx).With("url", c.endpoint)
	ctx = pslog.ContextWithLogger(ctx, log)

	tty, err := terminal.Open(os.Stdin)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := tty.Close(); cerr != nil {
			log.Warn("client tty restore failed", "err", cerr)
		}
	}()

	manager := wsclient.New(wsclient.Config{URL: c.endpoint, Logger: log})
	defer manager.Close()

	orch, err := session.New(session.Config{
		Lexicon:  c.lexicon,
		Renderer: terminal.NewRenderer(os.Stdout),
		Channel:  manager,
		Input:    tty.Keys(),
		Events:   manager.Events(),
	})
	if err != nil {
		return err
	}
	log.Info("client start")
	return orch.Run(ctx)
}
