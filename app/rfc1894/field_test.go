package rfc1894

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		line   string
		ok     bool
		kind   Kind
		key    string
		typ    string
		value  string
		perMsg bool
	}{
		{name: "final recipient", line: "Final-Recipient: rfc822; kijitora@example.jp", ok: true, kind: KindAddress, key: KeyRecipient, typ: "rfc822", value: "kijitora@example.jp"},
		{name: "bracketed address", line: "final-recipient: RFC822; <neko@example.jp>", ok: true, kind: KindAddress, key: KeyRecipient, typ: "RFC822", value: "neko@example.jp"},
		{name: "alias", line: "X-Actual-Recipient: rfc822; alias@example.jp", ok: true, kind: KindAddress, key: KeyAlias, typ: "rfc822", value: "alias@example.jp"},
		{name: "diagnostic", line: "Diagnostic-Code: SMTP; 550 5.1.1 User", ok: true, kind: KindCode, key: KeyDiagnosis, typ: "SMTP", value: "550 5.1.1 User"},
		{name: "diagnostic without type", line: "Diagnostic-Code: 550 5.1.1 <a@b>; rejected", ok: true, kind: KindCode, key: KeyDiagnosis, value: "550 5.1.1 <a@b>; rejected"},
		{name: "status with comment", line: "Status: 5.1.1 (bad mailbox)", ok: true, kind: KindPlain, key: KeyStatus, value: "5.1.1"},
		{name: "action lowercased", line: "Action: Failed", ok: true, kind: KindPlain, key: KeyAction, value: "failed"},
		{name: "reporting mta", line: "Reporting-MTA: dns; mx.example.jp", ok: true, kind: KindPlain, key: KeyLocalHost, typ: "dns", value: "mx.example.jp", perMsg: true},
		{name: "arrival date", line: "Arrival-Date: Thu, 29 Apr 2010 23:34:45 +0900", ok: true, kind: KindDate, key: KeyDate, value: "Thu, 29 Apr 2010 23:34:45 +0900", perMsg: true},
		{name: "unknown field", line: "X-Mailer: something", ok: false},
		{name: "empty value", line: "Status:", ok: false},
		{name: "indented", line: " Status: 5.1.1", ok: false},
		{name: "no colon", line: "just text", ok: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f, ok := Parse(tc.line)
			if ok != tc.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tc.line, ok, tc.ok)
			}
			if !ok {
				return
			}
			if f.Kind != tc.kind || f.Key != tc.key || f.Type != tc.typ || f.Value != tc.value || f.PerMessage != tc.perMsg {
				t.Fatalf("Parse(%q) = %+v", tc.line, f)
			}
		})
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	t.Parallel()

	def, ok := Lookup("DIAGNOSTIC-CODE")
	if !ok || def.Kind != KindCode {
		t.Fatalf("expected diagnostic-code definition, got %+v %v", def, ok)
	}
}
