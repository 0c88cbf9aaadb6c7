package engine

import "testing"

func TestExtractFoldsDiagnosticContinuation(t *testing.T) {
	t.Parallel()

	x := Extractor{}
	events := x.Extract("Final-Recipient: rfc822; kijitora@example.jp\nDiagnostic-Code: SMTP; 550 5.1.1 User\n unknown")

	records := Aggregator{}.Aggregate(events, nil)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Diagnosis != "550 5.1.1 User unknown" {
		t.Fatalf("unexpected diagnosis %q", records[0].Diagnosis)
	}
	if records[0].DiagnosticType != "SMTP" {
		t.Fatalf("unexpected diagnostic type %q", records[0].DiagnosticType)
	}
}

func TestExtractContinuationNeedsDiagnosticLookback(t *testing.T) {
	t.Parallel()

	x := Extractor{}
	events := x.Extract("Action: failed\n indented noise\nDiagnostic-Code: smtp; 550 denied\n\n after blank")

	kinds := []EventKind{EventPlain, EventIgnore, EventCode, EventIgnore, EventIgnore}
	if len(events) != len(kinds) {
		t.Fatalf("expected %d events, got %d", len(kinds), len(events))
	}
	for i, want := range kinds {
		if events[i].Kind != want {
			t.Fatalf("event %d: expected %s, got %s", i, want, events[i].Kind)
		}
	}
}

func TestExtractChainsMultilineContinuation(t *testing.T) {
	t.Parallel()

	x := Extractor{}
	events := x.Extract("Final-Recipient: rfc822; a@example.jp\nDiagnostic-Code: smtp; 550 one\n two\n three")
	records := Aggregator{}.Aggregate(events, nil)
	if records[0].Diagnosis != "550 one two three" {
		t.Fatalf("unexpected diagnosis %q", records[0].Diagnosis)
	}
}

func TestExtractIgnoresLinesBeforeStatusBlock(t *testing.T) {
	t.Parallel()

	x := Extractor{Start: []Marker{Prefix("Content-Type: message/delivery-status")}}
	body := "Final-Recipient: rfc822; early@example.jp\nContent-Type: message/delivery-status\nFinal-Recipient: rfc822; late@example.jp"

	st := x.Initial()
	if st.Position != BeforeStatus {
		t.Fatalf("expected BeforeStatus, got %v", st.Position)
	}

	records := Aggregator{}.Aggregate(x.Extract(body), nil)
	if len(records) != 1 || records[0].Recipient != "late@example.jp" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestExtractHookRunsFirst(t *testing.T) {
	t.Parallel()

	x := Extractor{Hook: func(line string) (FieldEvent, bool) {
		if line == "Status: custom" {
			return Plain("command", "RCPT", true), true
		}
		return FieldEvent{}, false
	}}
	events := x.Extract("Status: custom")
	if events[0].Kind != EventPlain || events[0].Value != "RCPT" {
		t.Fatalf("hook not applied: %+v", events[0])
	}
}

func TestExtractWidenedContinuation(t *testing.T) {
	t.Parallel()

	x := Extractor{
		Continue:   IndentedContinuation,
		Recipients: &RecipientLine{RequireDot: true, Bracketed: true},
	}
	body := "  kijitora@example.jp\n    SMTP error from remote mail server after RCPT TO:<kijitora@example.jp>:\n    host neko.example.jp [192.0.2.222]: 550 5.1.1 User Unknown"

	records := Aggregator{}.Aggregate(x.Extract(body), nil)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	want := "SMTP error from remote mail server after RCPT TO:<kijitora@example.jp>: host neko.example.jp [192.0.2.222]: 550 5.1.1 User Unknown"
	if records[0].Diagnosis != want {
		t.Fatalf("unexpected diagnosis %q", records[0].Diagnosis)
	}
}
