package engine

import "strings"

// RecipientLine recognizes free-text recipient lines printed by MTAs such as Exim:
//
//	  kijitora@example.jp
//	  sabineko@example.jp: forced freeze
//	  mikeneko@example.jp <nekochan@example.org>: ...
type RecipientLine struct {
	// RequireDot demands a dot somewhere on the line, i.e. a domain part.
	RequireDot bool
	// Bracketed takes the `<addr>` of "local <addr>: error" lines as the recipient.
	Bracketed bool
	// Undisclosed is a phrase accepted as a recipient line without an address.
	Undisclosed string
	// Aliases recognizes "(generated from addr)" and "generated by addr" lines.
	Aliases bool
}

// Match reports whether line names a recipient and returns the address and any
// error text that follows it on the same line.
func (r RecipientLine) Match(line string) (addr string, text string, ok bool) {
	if !strings.HasPrefix(line, "  ") || len(line) < 3 {
		return "", "", false
	}
	if r.Undisclosed != "" && strings.Contains(line, r.Undisclosed) {
		return strings.TrimSpace(line), "", true
	}
	if c := line[2]; c == ' ' || c == '\t' || c == '<' {
		return "", "", false
	}
	if strings.Index(line, "@") < 3 || strings.Contains(line, "pipe to |") {
		return "", "", false
	}
	if r.RequireDot && !strings.Contains(line, ".") {
		return "", "", false
	}

	body := line[2:]
	if r.Bracketed {
		p1 := strings.Index(body, " <")
		p2 := strings.Index(body, ">:")
		if p1 > 0 && p2 > p1 {
			return body[p1+2 : p2], strings.TrimSpace(body[p2+2:]), true
		}
	}
	if i := strings.Index(body, ": "); i > 0 {
		addr, text = body[:i], strings.TrimSpace(body[i+2:])
	} else {
		addr = body
	}
	addr = strings.Trim(strings.TrimSpace(addr), "<>:")
	if !strings.Contains(addr, "@") || strings.ContainsAny(addr, " \t") {
		return "", "", false
	}
	return addr, text, true
}

// Alias extracts the address of an alias expansion line.
func (r RecipientLine) Alias(line string) (string, bool) {
	if !r.Aliases {
		return "", false
	}
	if !strings.Contains(line, " (generated from ") && !strings.Contains(line, " generated by ") {
		return "", false
	}
	fields := strings.Fields(line)
	addr := strings.Trim(fields[len(fields)-1], "()<>")
	if addr == "" {
		return "", false
	}
	return addr, true
}

// Event converts a matching line into a recipient or alias event.
func (r RecipientLine) Event(line string) (FieldEvent, bool) {
	if addr, text, ok := r.Match(line); ok {
		return Recipient(addr, text), true
	}
	if addr, ok := r.Alias(line); ok {
		return Alias(addr), true
	}
	return FieldEvent{}, false
}
