package engine

import (
	"regexp"
	"strings"

	"github.com/vibast-solutions/ms-go-bounces/app/entity"
	"github.com/vibast-solutions/ms-go-bounces/app/smtp"
)

// ReasonRule maps keywords onto a reason. Rules are tried in table order.
type ReasonRule struct {
	Reason   entity.Reason
	Keywords []string
	// Fold compares in lower case instead of exactly.
	Fold bool
}

// Matches reports whether any keyword occurs in text.
func (r ReasonRule) Matches(text string) bool {
	if r.Fold {
		text = strings.ToLower(text)
	}
	for _, kw := range r.Keywords {
		if r.Fold {
			kw = strings.ToLower(kw)
		}
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Classifier resolves reason, command and codes of a single record.
type Classifier struct {
	Reasons  []ReasonRule
	Commands []*regexp.Regexp
	// MailReason is the reason for failures during MAIL FROM; onhold when empty.
	MailReason entity.Reason
	// Delimiter cuts machine-appended trailers off the diagnosis.
	Delimiter string
	// RemoteHostFromDiagnosis fills an empty remote host from "host X" in the diagnosis.
	RemoteHostFromDiagnosis bool
}

// Classify returns rec with every derived field resolved. It never fails: a
// record without usable signals ends up with reason undefined and a pseudo status.
func (c Classifier) Classify(rec entity.DeliveryRecord) entity.DeliveryRecord {
	diag := Sweep(rec.Diagnosis)

	if !smtp.IsCommand(rec.Command) {
		rec.Command = smtp.MatchCommand(diag, c.Commands)
	} else {
		rec.Command = strings.ToUpper(rec.Command)
	}

	if rec.Reason == "" || rec.Reason == entity.ReasonUnknown {
		rec.Reason = c.Reason(diag, rec)
	}

	rec.ReplyCode, rec.Status = reconcile(diag, rec)

	if c.Delimiter != "" {
		if i := strings.Index(diag, c.Delimiter); i > 1 {
			diag = strings.TrimSpace(diag[:i])
		}
	}
	rec.Diagnosis = diag

	if c.RemoteHostFromDiagnosis && rec.RemoteHost == "" {
		rec.RemoteHost = hostIn(diag)
	}
	return rec
}

// Reason walks the keyword table first, then the secondary signals.
func (c Classifier) Reason(diag string, rec entity.DeliveryRecord) entity.Reason {
	for _, rule := range c.Reasons {
		if rule.Matches(diag) {
			return rule.Reason
		}
	}
	if rec.Action == "expired" {
		return entity.ReasonExpired
	}
	switch rec.Command {
	case "HELO", "EHLO":
		return entity.ReasonBlocked
	case "MAIL":
		if c.MailReason != "" {
			return c.MailReason
		}
		return entity.ReasonOnHold
	}
	return entity.ReasonUnknown
}

// reconcile settles the reply code and the enhanced status code. A detailed
// status is kept unless the reply code disagrees on temporary versus permanent,
// in which case the reply decides and the status becomes the pseudo code of the reason.
func reconcile(diag string, rec entity.DeliveryRecord) (reply string, status string) {
	reply = rec.ReplyCode
	if !smtp.IsReply(reply) {
		reply = smtp.FindReply(diag)
	}

	status = rec.Status
	if !smtp.IsStatus(status) {
		status = ""
	}
	if status == "" || smtp.IsPlaceholder(status) {
		if found := smtp.FindStatus(diag); found != "" && (status == "" || !smtp.IsPlaceholder(found)) {
			status = found
		}
	}

	switch {
	case status != "" && !smtp.IsPlaceholder(status):
		if reply != "" && smtp.Class(reply) != smtp.Class(status) {
			status = smtp.Code(rec.Reason, smtp.Class(reply) == 4)
		}
	case reply != "":
		status = smtp.Code(rec.Reason, smtp.Class(reply) == 4)
	case status != "":
		if rec.Reason != entity.ReasonUnknown {
			status = smtp.Code(rec.Reason, smtp.Class(status) == 4)
		}
	default:
		status = smtp.Code(rec.Reason, rec.Reason.DefaultsToTemporary())
	}
	return reply, status
}

// hostIn returns X from "host X [addr]: ..." in a diagnosis.
func hostIn(diag string) string {
	i := strings.Index(diag, "host ")
	if i < 0 {
		return ""
	}
	rest := diag[i+5:]
	if j := strings.IndexByte(rest, ' '); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimRight(rest, ":,")
}
