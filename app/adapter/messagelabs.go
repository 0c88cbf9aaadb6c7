package adapter

import (
	"github.com/vibast-solutions/ms-go-bounces/app/engine"
	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

// MessageLabs parses bounces generated by Symantec.cloud, formerly MessageLabs.
func MessageLabs() *engine.Adapter {
	return &engine.Adapter{
		Name:        "messagelabs",
		Description: "Symantec.cloud: https://www.messagelabs.com",
		Recognizer: engine.Recognizer{
			Signals: []engine.Signal{
				{Header: "x-msg-ref", Present: true},
				{Header: "from", Contains: []string{"MAILER-DAEMON@messagelabs.com"}},
				{Header: "subject", Prefix: []string{"Mail Delivery Failure"}},
			},
			Threshold: 3,
		},
		Segmenter: engine.Segmenter{Boundaries: []engine.Marker{engine.Prefix(markerRFC822Headers)}, HeadersOnly: true},
		Extractor: engine.Extractor{Start: []engine.Marker{engine.Prefix(markerDeliveryStatus)}},
		Classifier: engine.Classifier{
			Reasons: withCommon(
				engine.ReasonRule{Reason: entity.ReasonUserUnknown, Keywords: []string{"542 ", " Rejected", "No such user"}},
				engine.ReasonRule{Reason: entity.ReasonSecurityError, Keywords: []string{"Please turn on SMTP Authentication in your mail client"}},
			),
			Commands: DefaultCommands(),
		},
	}
}
