package engine

import (
	"regexp"
	"testing"

	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

var testReasons = []ReasonRule{
	{Reason: entity.ReasonUserUnknown, Keywords: []string{"user not found", "User unknown"}},
	{Reason: entity.ReasonMailboxFull, Keywords: []string{"mailbox is full"}},
	{Reason: entity.ReasonExpired, Keywords: []string{"retry timeout exceeded"}},
}

func TestClassifyReasonTableOrderWins(t *testing.T) {
	t.Parallel()

	c := Classifier{Reasons: testReasons}
	rec := c.Classify(entity.DeliveryRecord{Recipient: "a@x.test", Diagnosis: "mailbox is full; user not found"})
	if rec.Reason != entity.ReasonUserUnknown {
		t.Fatalf("expected userunknown, got %s", rec.Reason)
	}

	swapped := Classifier{Reasons: []ReasonRule{testReasons[1], testReasons[0]}}
	rec = swapped.Classify(entity.DeliveryRecord{Recipient: "a@x.test", Diagnosis: "mailbox is full; user not found"})
	if rec.Reason != entity.ReasonMailboxFull {
		t.Fatalf("expected mailboxfull, got %s", rec.Reason)
	}
}

func TestClassifyRealStatusAgreesWithReply(t *testing.T) {
	t.Parallel()

	c := Classifier{Reasons: testReasons}
	rec := c.Classify(entity.DeliveryRecord{Recipient: "a@x.test", Diagnosis: "450 4.2.2 mailbox is full"})
	if rec.ReplyCode != "450" || rec.Reason != entity.ReasonMailboxFull || rec.Status != "4.2.2" {
		t.Fatalf("unexpected classification %+v", rec)
	}
}

func TestClassifyReplyOverridesPlaceholder(t *testing.T) {
	t.Parallel()

	c := Classifier{Reasons: testReasons}
	rec := c.Classify(entity.DeliveryRecord{
		Recipient: "a@x.test",
		Status:    "5.0.0",
		Diagnosis: "450 TEMPERROR: retry timeout exceeded",
	})
	if rec.Reason != entity.ReasonExpired {
		t.Fatalf("expected expired, got %s", rec.Reason)
	}
	if rec.Status == "5.0.0" || rec.Status != "4.0.947" {
		t.Fatalf("expected temporary pseudo status, got %s", rec.Status)
	}
	if !rec.Temporary() {
		t.Fatal("expected temporary record")
	}
}

func TestClassifyReplyOverridesDisagreeingStatus(t *testing.T) {
	t.Parallel()

	c := Classifier{Reasons: testReasons}
	rec := c.Classify(entity.DeliveryRecord{Recipient: "a@x.test", Status: "5.2.2", Diagnosis: "452 mailbox is full"})
	if rec.Status != "4.0.922" {
		t.Fatalf("expected 4.0.922, got %s", rec.Status)
	}
}

func TestClassifyDefaultsWithoutCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		diag   string
		reason entity.Reason
		status string
	}{
		{name: "mailbox full is temporary", diag: "mailbox is full", reason: entity.ReasonMailboxFull, status: "4.0.922"},
		{name: "expired is temporary", diag: "retry timeout exceeded", reason: entity.ReasonExpired, status: "4.0.947"},
		{name: "user unknown is permanent", diag: "user not found", reason: entity.ReasonUserUnknown, status: "5.0.911"},
		{name: "nothing at all", diag: "", reason: entity.ReasonUnknown, status: "5.0.900"},
	}

	c := Classifier{Reasons: testReasons}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := c.Classify(entity.DeliveryRecord{Recipient: "a@x.test", Diagnosis: tc.diag})
			if rec.Reason != tc.reason || rec.Status != tc.status {
				t.Fatalf("got reason=%s status=%s", rec.Reason, rec.Status)
			}
		})
	}
}

func TestClassifyCommandSignals(t *testing.T) {
	t.Parallel()

	commands := []*regexp.Regexp{regexp.MustCompile(`SMTP error from remote (?:mail server|mailer) after ([A-Za-z]{4})`)}

	c := Classifier{Reasons: testReasons, Commands: commands}
	rec := c.Classify(entity.DeliveryRecord{Recipient: "a@x.test", Diagnosis: "SMTP error from remote mail server after EHLO: 554 go away"})
	if rec.Command != "EHLO" || rec.Reason != entity.ReasonBlocked {
		t.Fatalf("unexpected %+v", rec)
	}

	rec = c.Classify(entity.DeliveryRecord{Recipient: "a@x.test", Diagnosis: "SMTP error from remote mail server after MAIL FROM:<s@x>: 550 no"})
	if rec.Command != "MAIL" || rec.Reason != entity.ReasonOnHold {
		t.Fatalf("unexpected %+v", rec)
	}

	c.MailReason = entity.ReasonRejected
	rec = c.Classify(entity.DeliveryRecord{Recipient: "a@x.test", Diagnosis: "SMTP error from remote mail server after MAIL FROM:<s@x>: 550 no"})
	if rec.Reason != entity.ReasonRejected {
		t.Fatalf("expected rejected, got %s", rec.Reason)
	}

	rec = c.Classify(entity.DeliveryRecord{Recipient: "a@x.test", Command: "rcpt", Diagnosis: "after EHLO"})
	if rec.Command != "RCPT" {
		t.Fatalf("extracted command overwritten: %s", rec.Command)
	}
}

func TestClassifyActionExpired(t *testing.T) {
	t.Parallel()

	rec := Classifier{}.Classify(entity.DeliveryRecord{Recipient: "a@x.test", Action: "expired"})
	if rec.Reason != entity.ReasonExpired || rec.Status != "4.0.947" {
		t.Fatalf("unexpected %+v", rec)
	}
}

func TestClassifyTruncatesAtDelimiterAndFindsHost(t *testing.T) {
	t.Parallel()

	c := Classifier{Delimiter: "__", RemoteHostFromDiagnosis: true}
	rec := c.Classify(entity.DeliveryRecord{
		Recipient: "a@x.test",
		Diagnosis: "host neko.example.jp [192.0.2.222]:\n   550 5.1.1 User Unknown __ appended trailer",
	})
	if rec.Diagnosis != "host neko.example.jp [192.0.2.222]: 550 5.1.1 User Unknown" {
		t.Fatalf("unexpected diagnosis %q", rec.Diagnosis)
	}
	if rec.RemoteHost != "neko.example.jp" {
		t.Fatalf("unexpected rhost %q", rec.RemoteHost)
	}
}
