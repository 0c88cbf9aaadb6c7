package adapter

import (
	"github.com/vibast-solutions/ms-go-bounces/app/engine"
	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

// Aol parses bounces generated by Aol Mail.
func Aol() *engine.Adapter {
	return &engine.Adapter{
		Name:        "aol",
		Description: "Aol Mail: https://www.aol.com",
		Recognizer: engine.Recognizer{
			Signals:   []engine.Signal{{Header: "x-aol-ip", Present: true}},
			Threshold: 1,
		},
		Segmenter: engine.Segmenter{Boundaries: []engine.Marker{engine.Prefix(markerRFC822)}, HeadersOnly: true},
		Extractor: engine.Extractor{Start: []engine.Marker{engine.Prefix(markerDeliveryStatus)}},
		Classifier: engine.Classifier{
			Reasons: withCommon(
				engine.ReasonRule{Reason: entity.ReasonHostUnknown, Keywords: []string{"Host or domain name not found"}},
				engine.ReasonRule{Reason: entity.ReasonNotAccept, Keywords: []string{"type=MX: Malformed or unexpected name server reply"}},
			),
			Commands: DefaultCommands(),
		},
	}
}
