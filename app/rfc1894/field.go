// Package rfc1894 recognizes the delivery-status fields of RFC 3464 (formerly RFC 1894).
package rfc1894

import "strings"

// Kind is the value class of a delivery-status field.
type Kind int

const (
	KindNone Kind = iota
	KindAddress
	KindCode
	KindDate
	KindPlain
)

func (k Kind) String() string {
	switch k {
	case KindAddress:
		return "addr"
	case KindCode:
		return "code"
	case KindDate:
		return "date"
	case KindPlain:
		return "plain"
	}
	return "none"
}

// Record attribute keys a field maps onto. An empty key means the field is
// recognized but carries nothing a delivery record keeps.
const (
	KeyRecipient  = "recipient"
	KeyAlias      = "alias"
	KeyAction     = "action"
	KeyDate       = "date"
	KeyLocalHost  = "lhost"
	KeyRemoteHost = "rhost"
	KeyStatus     = "status"
	KeyDiagnosis  = "diagnosis"
	KeyEnvelopeID = "envelope-id"
	KeyCommand    = "command"
)

// Definition describes one recognized field name.
type Definition struct {
	Name       string
	Kind       Kind
	Key        string
	PerMessage bool
}

var table = map[string]Definition{
	// per-message fields
	"reporting-mta":        {Name: "reporting-mta", Kind: KindPlain, Key: KeyLocalHost, PerMessage: true},
	"received-from-mta":    {Name: "received-from-mta", Kind: KindPlain, PerMessage: true},
	"dsn-gateway":          {Name: "dsn-gateway", Kind: KindPlain, PerMessage: true},
	"original-envelope-id": {Name: "original-envelope-id", Kind: KindPlain, Key: KeyEnvelopeID, PerMessage: true},
	"arrival-date":         {Name: "arrival-date", Kind: KindDate, Key: KeyDate, PerMessage: true},

	// per-recipient fields
	"final-recipient":    {Name: "final-recipient", Kind: KindAddress, Key: KeyRecipient},
	"original-recipient": {Name: "original-recipient", Kind: KindAddress, Key: KeyAlias},
	"x-actual-recipient": {Name: "x-actual-recipient", Kind: KindAddress, Key: KeyAlias},
	"action":             {Name: "action", Kind: KindPlain, Key: KeyAction},
	"status":             {Name: "status", Kind: KindPlain, Key: KeyStatus},
	"remote-mta":         {Name: "remote-mta", Kind: KindPlain, Key: KeyRemoteHost},
	"diagnostic-code":    {Name: "diagnostic-code", Kind: KindCode, Key: KeyDiagnosis},
	"last-attempt-date":  {Name: "last-attempt-date", Kind: KindDate, Key: KeyDate},
	"final-log-id":       {Name: "final-log-id", Kind: KindPlain},
	"will-retry-until":   {Name: "will-retry-until", Kind: KindDate},
}

// Lookup returns the definition for a field name, case-insensitively.
func Lookup(name string) (Definition, bool) {
	def, ok := table[strings.ToLower(strings.TrimSpace(name))]
	return def, ok
}

// Field is one parsed `Name: [type;] value` line.
type Field struct {
	Definition
	Type  string
	Value string
}

// Split breaks a line into field name and raw value. Field names start at
// column zero and consist of letters, digits and hyphens.
func Split(line string) (name string, value string, ok bool) {
	colon := strings.IndexByte(line, ':')
	if colon < 1 {
		return "", "", false
	}
	for i := 0; i < colon; i++ {
		c := line[i]
		if !(c == '-' || c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
			return "", "", false
		}
	}
	return line[:colon], strings.TrimSpace(line[colon+1:]), true
}

// Parse recognizes a delivery-status field line. Unknown names and empty
// values are rejected.
func Parse(line string) (Field, bool) {
	name, raw, ok := Split(line)
	if !ok {
		return Field{}, false
	}
	def, ok := Lookup(name)
	if !ok {
		return Field{}, false
	}

	f := Field{Definition: def}
	f.Type, f.Value = splitType(raw)
	if f.Value == "" {
		return Field{}, false
	}

	switch def.Kind {
	case KindAddress:
		f.Value = strings.Trim(f.Value, "<> ")
		if f.Type == "" && strings.Contains(f.Value, "@") {
			f.Type = "rfc822"
		}
	case KindPlain:
		if def.Key == KeyStatus || def.Key == KeyAction {
			f.Value = strings.Fields(f.Value)[0]
		}
		if def.Key == KeyAction {
			f.Value = strings.ToLower(f.Value)
		}
	}
	if f.Value == "" {
		return Field{}, false
	}
	return f, true
}

// splitType separates an optional `type;` prefix such as "rfc822;", "SMTP;" or
// "dns;". A prefix containing spaces is part of the value.
func splitType(raw string) (string, string) {
	semi := strings.IndexByte(raw, ';')
	if semi < 1 {
		return "", raw
	}
	prefix := strings.TrimSpace(raw[:semi])
	if prefix == "" || strings.ContainsAny(prefix, " \t") {
		return "", raw
	}
	return prefix, strings.TrimSpace(raw[semi+1:])
}
