package session

import (
	"strings"
	"time"
)

// completionWindow is how long after a completion trigger a second trigger
// keeps cycling the same candidate set instead of recomputing it. A trigger
// landing exactly on the boundary starts a fresh match.
const completionWindow = 300 * time.Millisecond

// CompletionKind tags the outcome of a completion trigger.
type CompletionKind int

const (
	// CompletionNone means no lexicon entry matched the line.
	CompletionNone CompletionKind = iota
	// CompletionUnique means exactly one entry matched.
	CompletionUnique
	// CompletionCycle means several entries matched and one was selected.
	CompletionCycle
)

// CompletionResult is the outcome of one completion trigger.
type CompletionResult struct {
	Kind CompletionKind
	// Text is the selected candidate for Unique and Cycle outcomes.
	Text string
	// Candidates is the full match set for Cycle outcomes.
	Candidates []string
	// Fresh reports whether this trigger recomputed the candidate set.
	Fresh bool
}

// CompletionEngine matches line prefixes against a fixed lexicon and
// cycles through the candidates on rapid repeated triggers.
type CompletionEngine struct {
	lexicon    []string
	candidates []string
	index      int
	last       time.Time
}

// NewCompletionEngine returns an engine over a copy of lexicon. Candidate
// order follows lexicon order.
func NewCompletionEngine(lexicon []string) *CompletionEngine {
	return &CompletionEngine{lexicon: append([]string(nil), lexicon...)}
}

// Complete resolves one completion trigger against the current line. The
// caller supplies now so triggers can be ordered against the cycling
// window.
func (e *CompletionEngine) Complete(current string, now time.Time) CompletionResult {
	continued := len(e.candidates) > 0 && now.Sub(e.last) < completionWindow
	e.last = now
	if !continued {
		e.recompute(current)
	}
	switch len(e.candidates) {
	case 0:
		return CompletionResult{Kind: CompletionNone}
	case 1:
		e.index = 0
		return CompletionResult{Kind: CompletionUnique, Text: e.candidates[0], Fresh: !continued}
	}
	if e.index < 0 || e.index >= len(e.candidates) {
		e.index = 0
	}
	result := CompletionResult{
		Kind:       CompletionCycle,
		Text:       e.candidates[e.index],
		Candidates: append([]string(nil), e.candidates...),
		Fresh:      !continued,
	}
	e.index = (e.index + 1) % len(e.candidates)
	return result
}

// Invalidate drops the candidate set. Any line mutation that is not a
// completion replacement must invalidate, so the next trigger matches
// fresh.
func (e *CompletionEngine) Invalidate() {
	e.candidates = nil
	e.index = 0
}

func (e *CompletionEngine) recompute(current string) {
	prefix := strings.ToLower(current)
	e.candidates = nil
	for _, word := range e.lexicon {
		if strings.HasPrefix(strings.ToLower(word), prefix) {
			e.candidates = append(e.candidates, word)
		}
	}
	e.index = 0
}
