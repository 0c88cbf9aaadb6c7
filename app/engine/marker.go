package engine

import "strings"

// MatchMode selects how a Marker compares against a line.
type MatchMode int

const (
	MatchPrefix MatchMode = iota
	MatchEqual
	MatchContains
)

// Marker is a literal line marker such as a boundary or the start of a status block.
type Marker struct {
	Text string
	Mode MatchMode
	// Keep hands the marker line itself to the field scan instead of discarding it.
	Keep bool
}

// Prefix builds a marker matching lines that start with text.
func Prefix(text string) Marker { return Marker{Text: text, Mode: MatchPrefix} }

// Equal builds a marker matching lines equal to text.
func Equal(text string) Marker { return Marker{Text: text, Mode: MatchEqual} }

// Contains builds a marker matching lines that contain text.
func Contains(text string) Marker { return Marker{Text: text, Mode: MatchContains} }

// Match reports whether line satisfies the marker. A trailing carriage return is ignored.
func (m Marker) Match(line string) bool {
	if m.Text == "" {
		return false
	}
	line = strings.TrimRight(line, "\r")
	switch m.Mode {
	case MatchEqual:
		return line == m.Text
	case MatchContains:
		return strings.Contains(line, m.Text)
	default:
		return strings.HasPrefix(line, m.Text)
	}
}

func firstMatch(markers []Marker, line string) (Marker, bool) {
	for _, m := range markers {
		if m.Match(line) {
			return m, true
		}
	}
	return Marker{}, false
}
