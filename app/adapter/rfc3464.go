package adapter

import "github.com/vibast-solutions/ms-go-bounces/app/engine"

// RFC3464 parses any standard multipart/report delivery status notification.
// It is the catch-all and belongs at the end of a registry.
func RFC3464() *engine.Adapter {
	return &engine.Adapter{
		Name:        "rfc3464",
		Description: "Fallback module for RFC 3464 delivery status notifications",
		Recognizer: engine.Recognizer{
			Signals: []engine.Signal{
				{Header: "content-type", ContainsAll: []string{"multipart/report", "delivery-status"}, Fold: true},
			},
			Threshold: 1,
		},
		Segmenter: engine.Segmenter{
			Boundaries:  []engine.Marker{engine.Prefix(markerRFC822), engine.Prefix(markerRFC822Headers)},
			HeadersOnly: true,
		},
		Extractor:      engine.Extractor{Start: []engine.Marker{engine.Prefix(markerDeliveryStatus)}},
		Aggregator:     engine.Aggregator{AliasLeadsRecipient: true},
		Classifier:     engine.Classifier{Reasons: withCommon(), Commands: DefaultCommands()},
		FallbackHeader: "x-failed-recipients",
	}
}
