// Package adapter holds the vendor configurations fed to the bounce engine.
package adapter

import (
	"regexp"
	"strings"

	"github.com/vibast-solutions/ms-go-bounces/app/engine"
	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

const (
	markerDeliveryStatus = "Content-Type: message/delivery-status"
	markerRFC822         = "Content-Type: message/rfc822"
	markerRFC822Headers  = "Content-Type: text/rfc822-headers"
	markerEximCopy       = "------ This is a copy of the message, including all the headers. ------"
	markerEximCreated    = "This message was created automatically by mail delivery software."
)

// commonReasons is the case-insensitive keyword table appended after every
// vendor table. Earlier rules win, so narrow phrases come before broad ones.
var commonReasons = []engine.ReasonRule{
	{Reason: entity.ReasonMailboxFull, Fold: true, Keywords: []string{
		"mailbox is full", "mailbox full", "over quota", "quota exceeded", "exceeded storage allocation",
		"mailbox size limit exceeded", "insufficient disk space", "user is over quota",
	}},
	{Reason: entity.ReasonHostUnknown, Fold: true, Keywords: []string{
		"host unknown", "host not found", "domain not found", "unrouteable address",
		"name service error", "no mx record", "domain does not exist",
	}},
	{Reason: entity.ReasonUserUnknown, Fold: true, Keywords: []string{
		"user unknown", "unknown user", "no such user", "user not found", "unknown recipient",
		"mailbox not found", "no mailbox here", "invalid recipient", "recipient not found",
		"address does not exist", "account does not exist", "mailbox unavailable", "does not exist",
	}},
	{Reason: entity.ReasonNoRelaying, Fold: true, Keywords: []string{
		"relay access denied", "relaying denied", "not permitted to relay", "relay not permitted",
	}},
	{Reason: entity.ReasonSuspend, Fold: true, Keywords: []string{
		"mailbox disabled", "account disabled", "account has been disabled", "account is disabled", "suspended",
	}},
	{Reason: entity.ReasonMesgTooBig, Fold: true, Keywords: []string{
		"message too large", "message is too big", "message size exceeds", "exceeds size limit",
	}},
	{Reason: entity.ReasonSpamDetected, Fold: true, Keywords: []string{
		"spam", "junk mail", "message content rejected as unsolicited",
	}},
	{Reason: entity.ReasonBlocked, Fold: true, Keywords: []string{
		"blacklisted", "blocklisted", "client host rejected", "listed on", "ip address is blocked",
	}},
	{Reason: entity.ReasonRejected, Fold: true, Keywords: []string{
		"sender address rejected", "sender rejected", "domain of sender address",
	}},
	{Reason: entity.ReasonSecurityError, Fold: true, Keywords: []string{
		"authentication required", "must issue a starttls", "tls required",
	}},
	{Reason: entity.ReasonSystemFull, Fold: true, Keywords: []string{"insufficient system storage"}},
	{Reason: entity.ReasonTooManyConn, Fold: true, Keywords: []string{"too many connections"}},
	{Reason: entity.ReasonNetworkError, Fold: true, Keywords: []string{
		"connection timed out", "connection refused", "network is unreachable",
	}},
	{Reason: entity.ReasonExpired, Fold: true, Keywords: []string{
		"retry timeout exceeded", "delivery time expired", "message expired",
	}},
	{Reason: entity.ReasonSyntaxError, Fold: true, Keywords: []string{"syntax error"}},
	{Reason: entity.ReasonContentError, Fold: true, Keywords: []string{"content rejected"}},
}

// defaultCommands recognize the SMTP verb in common diagnostic phrasings.
var defaultCommands = []*regexp.Regexp{
	regexp.MustCompile(`SMTP error from remote (?:mail server|mailer) after (?:end of )?([A-Za-z]{4})`),
	regexp.MustCompile(`(?i)\bin reply to (?:end of )?([A-Za-z]{4})\b`),
	regexp.MustCompile(`(?i)\bafter (?:end of )?([A-Za-z]{4})\b`),
}

// CommonReasons returns a copy of the shared keyword table.
func CommonReasons() []engine.ReasonRule {
	out := make([]engine.ReasonRule, len(commonReasons))
	for i, rule := range commonReasons {
		rule.Keywords = append([]string(nil), rule.Keywords...)
		out[i] = rule
	}
	return out
}

// DefaultCommands returns a copy of the shared SMTP command patterns.
func DefaultCommands() []*regexp.Regexp {
	return append([]*regexp.Regexp(nil), defaultCommands...)
}

// withCommon appends the shared keyword table to a vendor table.
func withCommon(vendor ...engine.ReasonRule) []engine.ReasonRule {
	out := make([]engine.ReasonRule, 0, len(vendor)+len(commonReasons))
	out = append(out, vendor...)
	return append(out, CommonReasons()...)
}

func lowered(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
