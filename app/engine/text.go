package engine

import "strings"

// Sweep collapses runs of whitespace, newlines included, into single spaces.
func Sweep(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func indented(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}
