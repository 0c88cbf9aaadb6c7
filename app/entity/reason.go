package entity

// Reason is the canonical bounce reason category.
type Reason string

const (
	ReasonBlocked       Reason = "blocked"
	ReasonContentError  Reason = "contenterror"
	ReasonExceedLimit   Reason = "exceedlimit"
	ReasonExpired       Reason = "expired"
	ReasonFiltered      Reason = "filtered"
	ReasonHasMoved      Reason = "hasmoved"
	ReasonHostUnknown   Reason = "hostunknown"
	ReasonMailboxFull   Reason = "mailboxfull"
	ReasonMailerError   Reason = "mailererror"
	ReasonMesgTooBig    Reason = "mesgtoobig"
	ReasonNetworkError  Reason = "networkerror"
	ReasonNoRelaying    Reason = "norelaying"
	ReasonNotAccept     Reason = "notaccept"
	ReasonOnHold        Reason = "onhold"
	ReasonRejected      Reason = "rejected"
	ReasonSecurityError Reason = "securityerror"
	ReasonSpamDetected  Reason = "spamdetected"
	ReasonSuspend       Reason = "suspend"
	ReasonSyntaxError   Reason = "syntaxerror"
	ReasonSystemError   Reason = "systemerror"
	ReasonSystemFull    Reason = "systemfull"
	ReasonTooManyConn   Reason = "toomanyconn"
	ReasonUserUnknown   Reason = "userunknown"
	ReasonUnknown       Reason = "undefined"
)

var reasons = map[Reason]struct{}{
	ReasonBlocked: {}, ReasonContentError: {}, ReasonExceedLimit: {}, ReasonExpired: {},
	ReasonFiltered: {}, ReasonHasMoved: {}, ReasonHostUnknown: {}, ReasonMailboxFull: {},
	ReasonMailerError: {}, ReasonMesgTooBig: {}, ReasonNetworkError: {}, ReasonNoRelaying: {},
	ReasonNotAccept: {}, ReasonOnHold: {}, ReasonRejected: {}, ReasonSecurityError: {},
	ReasonSpamDetected: {}, ReasonSuspend: {}, ReasonSyntaxError: {}, ReasonSystemError: {},
	ReasonSystemFull: {}, ReasonTooManyConn: {}, ReasonUserUnknown: {}, ReasonUnknown: {},
}

// ParseReason maps a category name onto the closed set. Unknown names become ReasonUnknown.
func ParseReason(name string) (Reason, bool) {
	r := Reason(name)
	if _, ok := reasons[r]; !ok {
		return ReasonUnknown, false
	}
	return r, true
}

// DefaultsToTemporary reports whether a reason without any status or reply code
// is treated as a soft bounce.
func (r Reason) DefaultsToTemporary() bool {
	return r == ReasonExpired || r == ReasonMailboxFull
}

func (r Reason) String() string {
	if r == "" {
		return string(ReasonUnknown)
	}
	return string(r)
}
