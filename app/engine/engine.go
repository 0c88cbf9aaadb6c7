// Package engine parses bounce text into normalized delivery records. Each vendor
// is an Adapter: configuration for the shared Segmenter, Extractor, Aggregator and
// Classifier stages. Adapters are built once and only read afterwards, so one
// adapter may serve concurrent Inquire calls.
package engine

import (
	"strings"

	"github.com/vibast-solutions/ms-go-bounces/app/entity"
	"github.com/vibast-solutions/ms-go-bounces/app/smtp"
)

// Adapter bundles the per-vendor configuration of every stage.
type Adapter struct {
	Name        string
	Description string

	Recognizer Recognizer
	Segmenter  Segmenter
	Extractor  Extractor
	Aggregator Aggregator
	Classifier Classifier

	// FallbackHeader lists recipients (comma separated) when the body names none.
	FallbackHeader string
	// LocalHostFromReceived fills an empty local host from the oldest Received header.
	LocalHostFromReceived bool
}

// Result is the outcome of a successful Inquire.
type Result struct {
	Adapter  string                  `json:"adapter"`
	Records  []entity.DeliveryRecord `json:"records"`
	Original string                  `json:"original_message"`
	Trace    []TraceEntry            `json:"trace,omitempty"`
}

// TraceEntry notes which stage left a value empty or unresolved.
type TraceEntry struct {
	Recipient string `json:"recipient"`
	Stage     string `json:"stage"`
	Field     string `json:"field"`
	Note      string `json:"note"`
}

// Inquire parses body when the headers identify this adapter's vendor. It
// reports false when recognition fails or no recipient could be extracted.
func (a *Adapter) Inquire(h Headers, body string) (*Result, bool) {
	if !a.Recognizer.Recognize(h) {
		return nil, false
	}

	status, original := a.Segmenter.Segment(body)
	events := a.Extractor.Extract(status)
	records := a.Aggregator.Aggregate(events, a.fallback(h))
	if len(records) == 0 {
		return nil, false
	}

	var lhost string
	if a.LocalHostFromReceived {
		lhost = receivedFrom(h.Last("received"))
	}

	res := &Result{Adapter: a.Name, Original: original}
	for _, rec := range records {
		if rec.LocalHost == "" {
			rec.LocalHost = lhost
		}
		rec = a.Classifier.Classify(rec)
		rec.Adapter = a.Name
		res.Records = append(res.Records, rec)
		res.Trace = append(res.Trace, trace(rec)...)
	}
	return res, true
}

func (a *Adapter) fallback(h Headers) []string {
	if a.FallbackHeader == "" {
		return nil
	}
	var out []string
	for _, v := range h.Values(a.FallbackHeader) {
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				out = append(out, addr)
			}
		}
	}
	return out
}

// receivedFrom returns X from "from X (...)" in a Received header.
func receivedFrom(received string) string {
	i := strings.Index(received, "from ")
	if i < 0 {
		return ""
	}
	fields := strings.Fields(received[i+5:])
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func trace(rec entity.DeliveryRecord) []TraceEntry {
	var out []TraceEntry
	add := func(stage, field, note string) {
		out = append(out, TraceEntry{Recipient: rec.Recipient, Stage: stage, Field: field, Note: note})
	}
	if rec.Diagnosis == "" {
		add("extract", "diagnosis", "no diagnostic text found")
	}
	if rec.RemoteHost == "" {
		add("extract", "rhost", "remote host unknown")
	}
	if rec.Reason == entity.ReasonUnknown {
		add("classify", "reason", "no keyword or command signal matched")
	}
	if rec.Command == "" {
		add("classify", "command", "no SMTP command found")
	}
	if rec.ReplyCode == "" {
		add("classify", "reply_code", "no reply code found")
	}
	if smtp.IsPseudo(rec.Status) {
		add("classify", "status", "pseudo status derived from reason")
	}
	return out
}
