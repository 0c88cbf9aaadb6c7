package engine

import "strings"

// Segmenter splits a bounce body into the status text and the returned original message.
type Segmenter struct {
	Boundaries []Marker
	// HeadersOnly keeps only the header block of the original message.
	HeadersOnly bool
}

// Segment cuts body at the first line matching any boundary. The boundary line
// belongs to neither half. Without a boundary the whole body is status text.
func (s Segmenter) Segment(body string) (status string, original string) {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if _, ok := firstMatch(s.Boundaries, line); !ok {
			continue
		}
		status = strings.Join(lines[:i], "\n")
		original = strings.Join(lines[i+1:], "\n")
		if s.HeadersOnly {
			original = headerBlock(original)
		}
		return status, original
	}
	return body, ""
}

// headerBlock drops leading blank lines and cuts at the first blank line after them.
func headerBlock(part string) string {
	part = strings.TrimLeft(part, "\r\n")
	if part == "" {
		return ""
	}
	if i := strings.Index(part, "\n\n"); i >= 0 {
		part = part[:i]
	}
	if !strings.HasSuffix(part, "\n") {
		part += "\n"
	}
	return part
}
