package engine

import "github.com/vibast-solutions/ms-go-bounces/app/rfc1894"

// EventKind tags a FieldEvent.
type EventKind int

const (
	EventIgnore EventKind = iota
	EventAddress
	EventCode
	EventDate
	EventPlain
	EventContinuation
)

func (k EventKind) String() string {
	switch k {
	case EventAddress:
		return "address"
	case EventCode:
		return "code"
	case EventDate:
		return "date"
	case EventPlain:
		return "plain"
	case EventContinuation:
		return "continuation"
	}
	return "ignore"
}

// FieldEvent is what the extractor recognized on one line of status text.
type FieldEvent struct {
	Kind EventKind
	// Field is the canonical lower-case field name, e.g. "final-recipient".
	Field string
	// Key is the record attribute the value lands in.
	Key string
	// Type is the address type or diagnostic type prefix ("rfc822", "SMTP").
	Type  string
	Value string
	// Text is free text trailing an address on vendor recipient lines.
	Text       string
	PerMessage bool
	// Break marks a blank line, which ends a per-recipient field block.
	Break bool
}

// Ignore is the event for irrelevant lines.
func Ignore() FieldEvent { return FieldEvent{Kind: EventIgnore} }

// Blank is the event for an empty line inside the status block.
func Blank() FieldEvent { return FieldEvent{Kind: EventIgnore, Break: true} }

// Continuation extends the diagnostic text of the current record.
func Continuation(text string) FieldEvent {
	return FieldEvent{Kind: EventContinuation, Key: rfc1894.KeyDiagnosis, Value: text}
}

// Recipient opens or selects the record for addr.
func Recipient(addr, text string) FieldEvent {
	return FieldEvent{Kind: EventAddress, Field: "final-recipient", Key: rfc1894.KeyRecipient, Value: addr, Text: text}
}

// Alias sets the alias address of the current record.
func Alias(addr string) FieldEvent {
	return FieldEvent{Kind: EventAddress, Field: "x-actual-recipient", Key: rfc1894.KeyAlias, Value: addr}
}

// Plain sets an arbitrary record attribute.
func Plain(key, value string, perMessage bool) FieldEvent {
	return FieldEvent{Kind: EventPlain, Field: key, Key: key, Value: value, PerMessage: perMessage}
}

// FromField converts a parsed delivery-status field.
func FromField(f rfc1894.Field) FieldEvent {
	ev := FieldEvent{
		Field:      f.Name,
		Key:        f.Key,
		Type:       f.Type,
		Value:      f.Value,
		PerMessage: f.PerMessage,
	}
	switch f.Kind {
	case rfc1894.KindAddress:
		ev.Kind = EventAddress
	case rfc1894.KindCode:
		ev.Kind = EventCode
	case rfc1894.KindDate:
		ev.Kind = EventDate
	default:
		ev.Kind = EventPlain
	}
	return ev
}
