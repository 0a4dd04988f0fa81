// Package session implements the client-side session core: the line
// buffer, tab completion, and the loop that serializes keystrokes and
// connection events into renderer and channel calls.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"pkt.systems/pslog"

	"pkt.systems/remsh/schema"
)

const promptSuffix = "$ "

// State is the client-side view of the remote session.
type State struct {
	Cwd          string
	Conn         schema.ConnState
	InputEnabled bool
}

// Config assembles an Orchestrator.
type Config struct {
	// Lexicon is the completion word list. Empty means DefaultLexicon.
	Lexicon []string
	// Renderer receives all display output.
	Renderer Renderer
	// Channel carries committed command lines to the executor.
	Channel Channel
	// Input delivers classified keystrokes. The session stops when it
	// closes.
	Input <-chan InputEvent
	// Events delivers connection events in arrival order.
	Events <-chan schema.ConnEvent
}

// Orchestrator owns the session state and mutates it from a single
// goroutine. Keystrokes and connection events are interleaved through one
// select loop, so no handler ever races another.
type Orchestrator struct {
	renderer   Renderer
	channel    Channel
	input      <-chan InputEvent
	events     <-chan schema.ConnEvent
	buffer     LineBuffer
	completion *CompletionEngine
	state      State

	ctx context.Context
	now func() time.Time
}

// New validates cfg and returns an orchestrator ready to Run.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Renderer == nil {
		return nil, errors.New("session requires a renderer")
	}
	if cfg.Channel == nil {
		return nil, errors.New("session requires a channel")
	}
	if cfg.Input == nil {
		return nil, errors.New("session requires an input stream")
	}
	if cfg.Events == nil {
		return nil, errors.New("session requires a connection event stream")
	}
	lexicon := cfg.Lexicon
	if len(lexicon) == 0 {
		lexicon = DefaultLexicon()
	}
	return &Orchestrator{
		renderer:   cfg.Renderer,
		channel:    cfg.Channel,
		input:      cfg.Input,
		events:     cfg.Events,
		completion: NewCompletionEngine(lexicon),
		state:      State{Conn: schema.ConnDisconnected},
		ctx:        context.Background(),
		now:        time.Now,
	}, nil
}

// State returns a snapshot of the session state. It is only meaningful
// between Run iterations and exists for wiring and tests.
func (o *Orchestrator) State() State {
	return o.state
}

// Run connects the channel and processes events until ctx is cancelled or
// the input stream closes. It owns every state mutation; nothing else may
// touch the buffer or completion engine while it runs.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.ctx = ctx
	o.log().Info("session start")
	o.renderer.SetInputEnabled(false)
	o.channel.Connect()
	defer o.channel.Disconnect()
	for {
		select {
		case <-ctx.Done():
			o.log().Info("session stop", "reason", "context cancelled")
			return nil
		case ev, ok := <-o.input:
			if !ok {
				o.log().Info("session stop", "reason", "input closed")
				return nil
			}
			o.handleInput(ev)
		case ev, ok := <-o.events:
			if !ok {
				o.log().Info("session stop", "reason", "channel events closed")
				return nil
			}
			o.handleConn(ev)
		}
	}
}

func (o *Orchestrator) log() pslog.Logger {
	return pslog.Ctx(o.ctx)
}

// handleInput applies one keystroke. Keystrokes are ignored wholesale
// while input is disabled; they neither echo nor mutate state.
func (o *Orchestrator) handleInput(ev InputEvent) {
	if !o.state.InputEnabled {
		return
	}
	switch ev.Kind {
	case InputPrintable:
		o.buffer.Append(ev.R)
		o.completion.Invalidate()
		o.renderer.Write(string(ev.R))
	case InputErase:
		if o.buffer.Backspace() {
			o.renderer.Write("\b \b")
		}
		o.completion.Invalidate()
	case InputComplete:
		o.complete()
	case InputInterrupt:
		o.renderer.Write("^C\r\n")
		o.buffer.Reset()
		o.completion.Invalidate()
		o.renderPrompt()
	case InputCommit:
		o.commit()
	}
}

func (o *Orchestrator) complete() {
	result := o.completion.Complete(o.buffer.Value(), o.now())
	switch result.Kind {
	case CompletionNone:
		o.renderer.Write("\a")
	case CompletionUnique:
		o.buffer.Replace(result.Text)
		o.redrawLine()
	case CompletionCycle:
		if result.Fresh {
			o.renderer.Write("\r\n" + strings.Join(result.Candidates, "  ") + "\r\n")
		}
		o.buffer.Replace(result.Text)
		o.redrawLine()
	}
}

func (o *Orchestrator) commit() {
	line := strings.TrimSpace(o.buffer.Value())
	o.buffer.Reset()
	o.completion.Invalidate()
	o.renderer.Write("\r\n")
	switch line {
	case "":
		o.renderPrompt()
	case "clear":
		o.renderer.ClearView()
		o.renderPrompt()
	default:
		o.send(line)
	}
}

func (o *Orchestrator) send(line string) {
	if err := o.channel.Send(line); err != nil {
		o.log().Warn("command dropped", "err", err, "line", line)
		o.renderer.Write("Not connected. Command dropped.\r\n")
		o.renderPrompt()
		return
	}
	o.log().Debug("command sent", "line", line)
}

// handleConn applies one connection event. The channel manager owns
// socket teardown and reconnect scheduling; this side only mirrors the
// state and keeps the display honest.
func (o *Orchestrator) handleConn(ev schema.ConnEvent) {
	switch ev.Type {
	case schema.ConnOpened:
		o.state.Conn = schema.ConnConnected
		o.log().Info("channel opened")
		o.renderer.Focus()
	case schema.ConnMessage:
		o.handleMessage(ev.Message)
	case schema.ConnClosed:
		o.state.Conn = schema.ConnDisconnected
		o.setInputEnabled(false)
		o.log().Warn("channel closed", "code", ev.Code, "reason", ev.Reason)
		o.renderer.Write("\r\nConnection closed. Reconnecting in 5 seconds...\r\n")
	case schema.ConnErrored:
		o.state.Conn = schema.ConnDisconnected
		o.setInputEnabled(false)
		o.log().Error("channel errored", "err", ev.Err)
		o.renderer.Write("\r\nConnection error.\r\n")
	}
}

// handleMessage renders one executor frame. Output comes first, then the
// working directory update, and only then the prompt; input is never
// re-enabled before the prompt is visible.
func (o *Orchestrator) handleMessage(msg *schema.WireMessage) {
	if msg == nil {
		return
	}
	if msg.Output != nil {
		out := *msg.Output
		o.renderer.Write(out)
		if !strings.HasSuffix(out, "\n") {
			o.renderer.Write("\r\n")
		}
	}
	if msg.CwdUpdate != nil {
		o.state.Cwd = *msg.CwdUpdate
	}
	o.renderPrompt()
	o.setInputEnabled(true)
}

func (o *Orchestrator) setInputEnabled(enabled bool) {
	if o.state.InputEnabled == enabled {
		return
	}
	o.state.InputEnabled = enabled
	o.renderer.SetInputEnabled(enabled)
}

func (o *Orchestrator) prompt() string {
	return "\x1b[32m" + o.state.Cwd + "\x1b[0m" + promptSuffix
}

func (o *Orchestrator) renderPrompt() {
	o.renderer.Write(o.prompt())
}

// redrawLine repaints the input line in place after a completion
// replacement.
func (o *Orchestrator) redrawLine() {
	o.renderer.Write("\r\x1b[K" + o.prompt() + o.buffer.Value())
}
