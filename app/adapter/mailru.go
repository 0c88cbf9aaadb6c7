package adapter

import (
	"regexp"

	"github.com/vibast-solutions/ms-go-bounces/app/engine"
	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

var mailruCommands = []*regexp.Regexp{
	regexp.MustCompile(`SMTP error from remote (?:mail server|mailer) after ([A-Za-z]{4})`),
	regexp.MustCompile(`SMTP error from remote (?:mail server|mailer) after end of ([A-Za-z]{4})`),
}

// MailRu parses bounces generated by Mail.ru, an Exim derivative.
func MailRu() *engine.Adapter {
	reasons := make([]engine.ReasonRule, 0, len(eximMessages)+1)
	reasons = append(reasons, engine.ReasonRule{Reason: entity.ReasonExpired, Keywords: []string{
		"retry timeout exceeded",
		"No action is required on your part",
	}})
	reasons = append(reasons, eximMessages...)

	return &engine.Adapter{
		Name:        "mailru",
		Description: "@mail.ru: https://mail.ru",
		Recognizer: engine.Recognizer{
			Signals: []engine.Signal{
				{Header: "from", ContainsAll: []string{"mailer-daemon@", "mail.ru"}, Fold: true},
				{Header: "message-id", Suffix: []string{".mail.ru>", "smailru.net>"}, Fold: true},
				{Header: "subject", Contains: lowered(eximSubjects), Fold: true},
			},
			Threshold: 3,
		},
		Segmenter: engine.Segmenter{Boundaries: []engine.Marker{engine.Prefix(markerEximCopy)}, HeadersOnly: true},
		Extractor: engine.Extractor{
			Start:      []engine.Marker{engine.Prefix(markerEximCreated)},
			Continue:   engine.IndentedContinuation,
			Recipients: &engine.RecipientLine{RequireDot: true, Bracketed: true},
		},
		Aggregator: engine.Aggregator{KeepFirstDiagnosis: true, FallbackKeepsDiagnosis: true},
		Classifier: engine.Classifier{
			Reasons:                 withCommon(reasons...),
			Commands:                mailruCommands,
			MailReason:              entity.ReasonRejected,
			Delimiter:               "__",
			RemoteHostFromDiagnosis: true,
		},
		FallbackHeader:        "x-failed-recipients",
		LocalHostFromReceived: true,
	}
}
