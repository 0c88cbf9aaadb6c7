package engine

import (
	"strings"

	"github.com/vibast-solutions/ms-go-bounces/app/entity"
	"github.com/vibast-solutions/ms-go-bounces/app/rfc1894"
)

// Aggregator folds field events into one record per recipient.
type Aggregator struct {
	// KeepFirstDiagnosis stops a diagnostic field from replacing text the record
	// already collected, e.g. a DSN part repeating the human readable error.
	KeepFirstDiagnosis bool
	// PromoteAlias replaces a recipient without "@" by its alias.
	PromoteAlias bool
	// FallbackKeepsDiagnosis copies text collected before any recipient into
	// records synthesized from the out-of-band recipient list.
	FallbackKeepsDiagnosis bool
	// AliasLeadsRecipient attaches an alias that opens a field block to the
	// recipient named later in the same block, as Original-Recipient precedes
	// Final-Recipient in RFC 3464 per-recipient fields.
	AliasLeadsRecipient bool
}

type draft struct {
	record entity.DeliveryRecord
	parts  []string
}

func (d *draft) setDiagnosis(text string) {
	d.parts = d.parts[:0]
	if text != "" {
		d.parts = append(d.parts, text)
	}
}

func (d *draft) appendDiagnosis(text string) {
	if text == "" {
		return
	}
	for _, p := range d.parts {
		if p == text {
			return
		}
	}
	d.parts = append(d.parts, text)
}

func (d *draft) diagnosis() string {
	return strings.Join(d.parts, " ")
}

// Aggregate runs the fold. fallback is the out-of-band recipient list used when
// no event names a recipient.
func (a Aggregator) Aggregate(events []FieldEvent, fallback []string) []entity.DeliveryRecord {
	drafts := []*draft{{}}
	current := drafts[0]
	shared := map[string]string{}
	// opened is set once the current block names its recipient.
	opened := false
	pendingAlias := ""

	for _, ev := range events {
		switch ev.Kind {
		case EventIgnore:
			if ev.Break {
				opened = false
			}
			continue
		case EventContinuation:
			current.appendDiagnosis(ev.Value)
			continue
		case EventAddress:
			if ev.Key == rfc1894.KeyRecipient {
				current = a.selectRecipient(&drafts, current, ev.Value)
				opened = true
				if pendingAlias != "" {
					current.record.Alias = pendingAlias
					pendingAlias = ""
				}
				if ev.Text != "" {
					current.setDiagnosis(ev.Text)
				}
				continue
			}
			if ev.Key == rfc1894.KeyAlias && a.AliasLeadsRecipient && !opened {
				pendingAlias = ev.Value
				continue
			}
		case EventCode:
			if ev.Type != "" {
				current.record.DiagnosticType = ev.Type
			}
			if a.KeepFirstDiagnosis && len(current.parts) > 0 {
				continue
			}
			current.setDiagnosis(ev.Value)
			continue
		}

		if ev.Key == "" {
			continue
		}
		setAttribute(&current.record, ev.Key, ev.Value)
		if ev.PerMessage {
			shared[ev.Key] = ev.Value
		}
	}

	if pendingAlias != "" && current.record.Alias == "" {
		current.record.Alias = pendingAlias
	}

	records := make([]entity.DeliveryRecord, 0, len(drafts))
	for _, d := range drafts {
		rec := d.record
		rec.Diagnosis = d.diagnosis()
		if a.PromoteAlias && rec.Alias != "" && !strings.Contains(rec.Recipient, "@") {
			rec.Recipient = rec.Alias
		}
		if rec.Recipient == "" {
			continue
		}
		backfill(&rec, shared)
		records = append(records, rec)
	}
	if len(records) > 0 {
		return records
	}

	for _, addr := range fallback {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		rec := entity.DeliveryRecord{Recipient: addr}
		if a.FallbackKeepsDiagnosis {
			rec.Diagnosis = drafts[0].diagnosis()
		}
		backfill(&rec, shared)
		records = append(records, rec)
	}
	return records
}

// selectRecipient makes the record for addr current, opening a new one when the
// current record already belongs to someone else.
func (a Aggregator) selectRecipient(drafts *[]*draft, current *draft, addr string) *draft {
	for _, d := range *drafts {
		if d.record.Recipient != "" && strings.EqualFold(d.record.Recipient, addr) {
			return d
		}
	}
	if current.record.Recipient == "" {
		current.record.Recipient = addr
		return current
	}
	next := &draft{record: entity.DeliveryRecord{Recipient: addr}}
	*drafts = append(*drafts, next)
	return next
}

func setAttribute(rec *entity.DeliveryRecord, key, value string) {
	switch key {
	case rfc1894.KeyRecipient:
		rec.Recipient = value
	case rfc1894.KeyAlias:
		rec.Alias = value
	case rfc1894.KeyAction:
		rec.Action = value
	case rfc1894.KeyDate:
		rec.Date = value
	case rfc1894.KeyLocalHost:
		rec.LocalHost = value
	case rfc1894.KeyRemoteHost:
		rec.RemoteHost = value
	case rfc1894.KeyStatus:
		rec.Status = value
	case rfc1894.KeyEnvelopeID:
		rec.EnvelopeID = value
	case rfc1894.KeyCommand:
		rec.Command = value
	}
}

func attribute(rec *entity.DeliveryRecord, key string) string {
	switch key {
	case rfc1894.KeyAlias:
		return rec.Alias
	case rfc1894.KeyAction:
		return rec.Action
	case rfc1894.KeyDate:
		return rec.Date
	case rfc1894.KeyLocalHost:
		return rec.LocalHost
	case rfc1894.KeyRemoteHost:
		return rec.RemoteHost
	case rfc1894.KeyStatus:
		return rec.Status
	case rfc1894.KeyEnvelopeID:
		return rec.EnvelopeID
	case rfc1894.KeyCommand:
		return rec.Command
	}
	return ""
}

func backfill(rec *entity.DeliveryRecord, shared map[string]string) {
	for key, value := range shared {
		if attribute(rec, key) == "" {
			setAttribute(rec, key, value)
		}
	}
}
