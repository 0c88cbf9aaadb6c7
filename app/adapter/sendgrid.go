package adapter

import (
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-bounces/app/engine"
	"github.com/vibast-solutions/ms-go-bounces/app/rfc1894"
	"github.com/vibast-solutions/ms-go-bounces/app/smtp"
)

var centralDaylight = time.FixedZone("CDT", -5*60*60)

// SendGrid parses bounces generated by SendGrid.
func SendGrid() *engine.Adapter {
	return &engine.Adapter{
		Name:        "sendgrid",
		Description: "SendGrid: https://sendgrid.com/",
		Recognizer: engine.Recognizer{
			Signals: []engine.Signal{
				{Header: "return-path", Equals: []string{"<apps@sendgrid.net>"}},
				{Header: "subject", Equals: []string{"Undelivered Mail Returned to Sender"}},
			},
			Threshold: 2,
		},
		Segmenter: engine.Segmenter{Boundaries: []engine.Marker{engine.Prefix(markerRFC822)}, HeadersOnly: true},
		Extractor: engine.Extractor{
			Start: []engine.Marker{engine.Equal("This is an automatically generated message from SendGrid.")},
			Hook:  sendgridLine,
		},
		Classifier: engine.Classifier{Reasons: withCommon(), Commands: DefaultCommands()},
	}
}

// sendgridLine rewrites SendGrid's "Arrival-Date: 2012-12-31 23-59-59" into an
// RFC 1123 date and records the SMTP verb of ">>> RCPT TO:" transcript lines.
func sendgridLine(line string) (engine.FieldEvent, bool) {
	name, value, ok := rfc1894.Split(line)
	if !ok {
		if cmd := smtp.FindCommand(line); cmd != "" {
			return engine.Plain(rfc1894.KeyCommand, cmd, true), true
		}
		return engine.FieldEvent{}, false
	}
	if !strings.EqualFold(name, "Arrival-Date") {
		return engine.FieldEvent{}, false
	}
	t, err := time.ParseInLocation("2006-01-02 15-04-05", value, centralDaylight)
	if err != nil {
		return engine.FieldEvent{}, false
	}
	return engine.FieldEvent{
		Kind:       engine.EventDate,
		Field:      "arrival-date",
		Key:        rfc1894.KeyDate,
		Value:      t.Format(time.RFC1123Z),
		PerMessage: true,
	}, true
}
