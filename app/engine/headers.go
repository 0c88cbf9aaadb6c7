package engine

import "strings"

// Headers maps lower-cased header names to their values in arrival order.
type Headers map[string][]string

// Add appends a value under the lower-cased name.
func (h Headers) Add(name, value string) {
	key := strings.ToLower(strings.TrimSpace(name))
	h[key] = append(h[key], value)
}

// Get returns the first value for name, or an empty string.
func (h Headers) Get(name string) string {
	if values := h[strings.ToLower(name)]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// Values returns every value for name.
func (h Headers) Values(name string) []string {
	return h[strings.ToLower(name)]
}

// Last returns the last value for name, e.g. the oldest Received header.
func (h Headers) Last(name string) string {
	values := h[strings.ToLower(name)]
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}
