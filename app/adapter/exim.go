package adapter

import (
	"regexp"
	"strings"

	"github.com/vibast-solutions/ms-go-bounces/app/engine"
	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

var eximCommands = []*regexp.Regexp{
	regexp.MustCompile(`SMTP error from remote (?:mail server|mailer) after ([A-Za-z]{4})`),
	regexp.MustCompile(`SMTP error from remote (?:mail server|mailer) after end of ([A-Za-z]{4})`),
	regexp.MustCompile(`LMTP error after ([A-Za-z]{4})`),
	regexp.MustCompile(`LMTP error after end of ([A-Za-z]{4})`),
}

var eximMessages = []engine.ReasonRule{
	{Reason: entity.ReasonUserUnknown, Keywords: []string{"user not found"}},
	{Reason: entity.ReasonHostUnknown, Keywords: []string{
		"all host address lookups failed permanently",
		"all relevant MX records point to non-existent hosts",
		"Unrouteable address",
	}},
	{Reason: entity.ReasonMailboxFull, Keywords: []string{"mailbox is full", "error: quota exceed"}},
	{Reason: entity.ReasonNotAccept, Keywords: []string{
		"an MX or SRV record indicated no SMTP service",
		"no host found for existing SMTP connection",
	}},
	{Reason: entity.ReasonSyntaxError, Keywords: []string{
		"angle-brackets nested too deep",
		`expected word or "<"`,
		"domain missing in source-routed address",
		"malformed address:",
	}},
	{Reason: entity.ReasonSystemError, Keywords: []string{
		"delivery to file forbidden",
		"delivery to pipe forbidden",
		"local delivery failed",
		"LMTP error after ",
	}},
	{Reason: entity.ReasonContentError, Keywords: []string{`Too many "Received" headers`}},
}

var eximDelayed = engine.ReasonRule{Reason: entity.ReasonExpired, Keywords: []string{
	"retry timeout exceeded",
	"No action is required on your part",
	"retry time not reached for any host after a long failure period",
	"all hosts have been failing for a long time and were last tried",
	"Delay reason: ",
	"has been frozen",
	"was frozen on arrival by ",
}}

var eximPipe = engine.ReasonRule{Reason: entity.ReasonMailerError, Keywords: []string{"pipe to |"}}

var eximSubjects = []string{
	"Delivery Status Notification",
	"Mail delivery failed",
	"Mail failure",
	"Message frozen",
	"Warning: message ",
	"error(s) in forwarding or filtering",
}

// Exim parses bounces generated by the Exim MTA.
func Exim() *engine.Adapter {
	reasons := make([]engine.ReasonRule, 0, len(eximMessages)+2)
	reasons = append(reasons, eximMessages...)
	reasons = append(reasons, eximDelayed, eximPipe)

	return &engine.Adapter{
		Name:        "exim",
		Description: "Exim: https://www.exim.org/",
		Recognizer: engine.Recognizer{
			Signals: []engine.Signal{
				{Header: "from", Prefix: []string{"Mail Delivery System"}},
				{Header: "message-id", Pattern: regexp.MustCompile(`^<[^-@]{7}-[^@]{9}@`)},
				{Header: "subject", Contains: eximSubjects},
			},
			Threshold: 2,
			Reject:    []engine.Signal{{Header: "from", Contains: []string{".mail.ru"}}},
		},
		Segmenter: engine.Segmenter{
			Boundaries:  []engine.Marker{engine.Prefix(markerEximCopy), engine.Prefix(markerRFC822)},
			HeadersOnly: true,
		},
		Extractor: engine.Extractor{
			Start: []engine.Marker{
				engine.Contains(markerEximCreated),
				engine.Contains("A message that you sent was rejected by the local scanning code"),
				engine.Contains("A message that you sent contained one or more recipient addresses "),
				engine.Contains("A message that you sent could not be delivered to all of its recipients"),
				{Text: " has been frozen", Mode: engine.MatchContains, Keep: true},
				{Text: " was frozen on arrival", Mode: engine.MatchContains, Keep: true},
				engine.Contains(" delivery error was detected while processing a message"),
			},
			Continue: engine.IndentedContinuation,
			Hook:     eximFrozen,
			Recipients: &engine.RecipientLine{
				RequireDot:  true,
				Bracketed:   true,
				Undisclosed: " an undisclosed address",
				Aliases:     true,
			},
		},
		Aggregator: engine.Aggregator{KeepFirstDiagnosis: true, PromoteAlias: true, FallbackKeepsDiagnosis: true},
		Classifier: engine.Classifier{
			Reasons:                 withCommon(reasons...),
			Commands:                eximCommands,
			MailReason:              entity.ReasonOnHold,
			Delimiter:               "__",
			RemoteHostFromDiagnosis: true,
		},
		FallbackHeader:        "x-failed-recipients",
		LocalHostFromReceived: true,
	}
}

// eximFrozen keeps "Message 1Iozmr-0003I9-OE has been frozen" as diagnostic text.
func eximFrozen(line string) (engine.FieldEvent, bool) {
	if strings.Contains(line, " has been frozen") || strings.Contains(line, " was frozen on arrival") {
		return engine.Continuation(engine.Sweep(line)), true
	}
	return engine.FieldEvent{}, false
}
