package engine

import (
	"strings"

	"github.com/vibast-solutions/ms-go-bounces/app/rfc1894"
)

// Position is where the extractor stands relative to the status block.
type Position int

const (
	BeforeStatus Position = iota
	InStatus
)

// ExtractState is the fold accumulator threaded through Extractor.Step.
type ExtractState struct {
	Position Position
	// Previous is the kind of the last recognized line. A continuation does not
	// replace it, so multi-line values keep chaining.
	Previous EventKind
}

// ContinuationRule decides whether an unrecognized line extends the previous value.
type ContinuationRule func(previous EventKind, line string) bool

// DiagnosticContinuation folds indented lines that follow a diagnostic code.
func DiagnosticContinuation(previous EventKind, line string) bool {
	return previous == EventCode && indented(line)
}

// IndentedContinuation folds any indented line following a recipient or diagnostic,
// as in free-text bounces that print the error under the address.
func IndentedContinuation(previous EventKind, line string) bool {
	return (previous == EventAddress || previous == EventCode) && indented(line)
}

// LineHook lets an adapter claim a line before the field grammar sees it.
type LineHook func(line string) (FieldEvent, bool)

// Extractor turns status text into field events.
type Extractor struct {
	// Start markers open the status block. With none, the block starts at the first line.
	Start      []Marker
	Continue   ContinuationRule
	Hook       LineHook
	Recipients *RecipientLine
}

// Initial returns the starting state for a scan.
func (x Extractor) Initial() ExtractState {
	if len(x.Start) == 0 {
		return ExtractState{Position: InStatus}
	}
	return ExtractState{Position: BeforeStatus}
}

// Step classifies one line.
func (x Extractor) Step(st ExtractState, line string) (ExtractState, FieldEvent) {
	line = strings.TrimRight(line, "\r")

	if st.Position == BeforeStatus {
		m, ok := firstMatch(x.Start, line)
		if !ok {
			return st, Ignore()
		}
		st.Position = InStatus
		if !m.Keep {
			return st, Ignore()
		}
	}

	if strings.TrimSpace(line) == "" {
		st.Previous = EventIgnore
		return st, Blank()
	}

	if x.Hook != nil {
		if ev, ok := x.Hook(line); ok {
			return remember(st, ev), ev
		}
	}

	if x.Recipients != nil {
		if ev, ok := x.Recipients.Event(line); ok {
			return remember(st, ev), ev
		}
	}

	if f, ok := rfc1894.Parse(line); ok {
		ev := FromField(f)
		return remember(st, ev), ev
	}

	rule := x.Continue
	if rule == nil {
		rule = DiagnosticContinuation
	}
	if rule(st.Previous, line) {
		return st, Continuation(Sweep(line))
	}

	st.Previous = EventIgnore
	return st, Ignore()
}

// Extract scans the status text and returns one event per line.
func (x Extractor) Extract(status string) []FieldEvent {
	lines := strings.Split(status, "\n")
	events := make([]FieldEvent, 0, len(lines))
	st := x.Initial()
	for _, line := range lines {
		var ev FieldEvent
		st, ev = x.Step(st, line)
		events = append(events, ev)
	}
	return events
}

func remember(st ExtractState, ev FieldEvent) ExtractState {
	if ev.Kind != EventContinuation {
		st.Previous = ev.Kind
	}
	return st
}
