package entity

import "testing"

func TestParseReason(t *testing.T) {
	t.Parallel()

	if r, ok := ParseReason("mailboxfull"); !ok || r != ReasonMailboxFull {
		t.Fatalf("expected mailboxfull, got %q %v", r, ok)
	}
	if r, ok := ParseReason("nosuchreason"); ok || r != ReasonUnknown {
		t.Fatalf("expected undefined fallback, got %q %v", r, ok)
	}
	if got := Reason("").String(); got != string(ReasonUnknown) {
		t.Fatalf("expected empty reason to print as %q, got %q", ReasonUnknown, got)
	}
}

func TestDeliveryRecordTemporary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  DeliveryRecord
		want bool
	}{
		{name: "status wins", rec: DeliveryRecord{Status: "4.2.2", ReplyCode: "550"}, want: true},
		{name: "permanent status", rec: DeliveryRecord{Status: "5.1.1", Reason: ReasonExpired}, want: false},
		{name: "reply code", rec: DeliveryRecord{ReplyCode: "421"}, want: true},
		{name: "expired default", rec: DeliveryRecord{Reason: ReasonExpired}, want: true},
		{name: "userunknown default", rec: DeliveryRecord{Reason: ReasonUserUnknown}, want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.rec.Temporary(); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			wantStatus := EmailStatusPermanentFailure
			if tc.want {
				wantStatus = EmailStatusTemporaryFailure
			}
			if got := EmailStatusFor(tc.rec); got != wantStatus {
				t.Fatalf("expected email status %d, got %d", wantStatus, got)
			}
		})
	}
}

func TestBounceStatusName(t *testing.T) {
	t.Parallel()

	if got := BounceStatusName(BounceStatusUnrecognized); got != "unrecognized" {
		t.Fatalf("expected unrecognized, got %q", got)
	}
	if got := BounceStatusName(99); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}
