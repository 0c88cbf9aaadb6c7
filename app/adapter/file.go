package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/vibast-solutions/ms-go-bounces/app/engine"
	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

var ErrInvalidAdapter = errors.New("invalid adapter definition")

type markerSpec struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
	Keep bool   `json:"keep"`
}

type signalSpec struct {
	Header      string   `json:"header"`
	Present     bool     `json:"present"`
	Equals      []string `json:"equals"`
	Prefix      []string `json:"prefix"`
	Suffix      []string `json:"suffix"`
	Contains    []string `json:"contains"`
	ContainsAll []string `json:"contains_all"`
	Pattern     string   `json:"pattern"`
	Fold        bool     `json:"fold"`
}

type reasonSpec struct {
	Reason   string   `json:"reason"`
	Keywords []string `json:"keywords"`
	Fold     bool     `json:"fold"`
}

type recipientSpec struct {
	RequireDot  bool   `json:"require_dot"`
	Bracketed   bool   `json:"bracketed"`
	Undisclosed string `json:"undisclosed"`
	Aliases     bool   `json:"aliases"`
}

// Definition is the JSON form of a user supplied adapter.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Signals     []signalSpec   `json:"signals"`
	Reject      []signalSpec   `json:"reject"`
	Threshold   int            `json:"threshold"`
	Boundaries  []markerSpec   `json:"boundaries"`
	HeadersOnly bool           `json:"headers_only"`
	Start       []markerSpec   `json:"start"`
	Indented    bool           `json:"indented_continuation"`
	Recipients  *recipientSpec `json:"recipient_lines"`

	KeepFirstDiagnosis     bool `json:"keep_first_diagnosis"`
	PromoteAlias           bool `json:"promote_alias"`
	FallbackKeepsDiagnosis bool `json:"fallback_keeps_diagnosis"`
	AliasLeadsRecipient    bool `json:"alias_leads_recipient"`

	Reasons    []reasonSpec `json:"reasons"`
	Commands   []string     `json:"commands"`
	MailReason string       `json:"mail_reason"`
	Delimiter  string       `json:"delimiter"`
	// SkipCommonReasons leaves out the shared keyword table.
	SkipCommonReasons bool `json:"skip_common_reasons"`

	FallbackHeader          string `json:"fallback_header"`
	RemoteHostFromDiagnosis bool   `json:"rhost_from_diagnosis"`
	LocalHostFromReceived   bool   `json:"lhost_from_received"`
}

// LoadFile reads a JSON array of adapter definitions.
func LoadFile(path string) ([]*engine.Adapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read adapters file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and compiles a JSON array of adapter definitions.
func Parse(data []byte) ([]*engine.Adapter, error) {
	var defs []Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to decode adapters: %w", err)
	}

	adapters := make([]*engine.Adapter, 0, len(defs))
	seen := make(map[string]struct{}, len(defs))
	for i, def := range defs {
		a, err := def.Build()
		if err != nil {
			return nil, fmt.Errorf("adapter #%d: %w", i, err)
		}
		if _, dup := seen[a.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidAdapter, a.Name)
		}
		seen[a.Name] = struct{}{}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

// Build compiles the definition into an engine adapter.
func (d Definition) Build() (*engine.Adapter, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidAdapter)
	}
	if len(d.Signals) == 0 {
		return nil, fmt.Errorf("%w: %s: at least one signal is required", ErrInvalidAdapter, name)
	}

	signals, err := buildSignals(d.Signals)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	reject, err := buildSignals(d.Reject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	boundaries, err := buildMarkers(d.Boundaries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	start, err := buildMarkers(d.Start)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var rules []engine.ReasonRule
	for _, rs := range d.Reasons {
		reason, ok := entity.ParseReason(rs.Reason)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown reason %q", ErrInvalidAdapter, name, rs.Reason)
		}
		rules = append(rules, engine.ReasonRule{Reason: reason, Keywords: rs.Keywords, Fold: rs.Fold})
	}
	if !d.SkipCommonReasons {
		rules = withCommon(rules...)
	}

	commands := DefaultCommands()
	if len(d.Commands) > 0 {
		commands = make([]*regexp.Regexp, 0, len(d.Commands))
		for _, expr := range d.Commands {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: command pattern: %v", ErrInvalidAdapter, name, err)
			}
			commands = append(commands, re)
		}
	}

	var mailReason entity.Reason
	if d.MailReason != "" {
		r, ok := entity.ParseReason(d.MailReason)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown reason %q", ErrInvalidAdapter, name, d.MailReason)
		}
		mailReason = r
	}

	a := &engine.Adapter{
		Name:        name,
		Description: d.Description,
		Recognizer:  engine.Recognizer{Signals: signals, Threshold: d.Threshold, Reject: reject},
		Segmenter:   engine.Segmenter{Boundaries: boundaries, HeadersOnly: d.HeadersOnly},
		Extractor:   engine.Extractor{Start: start},
		Aggregator: engine.Aggregator{
			KeepFirstDiagnosis:     d.KeepFirstDiagnosis,
			PromoteAlias:           d.PromoteAlias,
			FallbackKeepsDiagnosis: d.FallbackKeepsDiagnosis,
			AliasLeadsRecipient:    d.AliasLeadsRecipient,
		},
		Classifier: engine.Classifier{
			Reasons:                 rules,
			Commands:                commands,
			MailReason:              mailReason,
			Delimiter:               d.Delimiter,
			RemoteHostFromDiagnosis: d.RemoteHostFromDiagnosis,
		},
		FallbackHeader:        strings.ToLower(d.FallbackHeader),
		LocalHostFromReceived: d.LocalHostFromReceived,
	}
	if d.Indented {
		a.Extractor.Continue = engine.IndentedContinuation
	}
	if d.Recipients != nil {
		a.Extractor.Recipients = &engine.RecipientLine{
			RequireDot:  d.Recipients.RequireDot,
			Bracketed:   d.Recipients.Bracketed,
			Undisclosed: d.Recipients.Undisclosed,
			Aliases:     d.Recipients.Aliases,
		}
	}
	return a, nil
}

func buildSignals(specs []signalSpec) ([]engine.Signal, error) {
	out := make([]engine.Signal, 0, len(specs))
	for _, s := range specs {
		if strings.TrimSpace(s.Header) == "" {
			return nil, fmt.Errorf("%w: signal without header", ErrInvalidAdapter)
		}
		sig := engine.Signal{
			Header:      strings.ToLower(s.Header),
			Present:     s.Present,
			Equals:      s.Equals,
			Prefix:      s.Prefix,
			Suffix:      s.Suffix,
			Contains:    s.Contains,
			ContainsAll: s.ContainsAll,
			Fold:        s.Fold,
		}
		if s.Fold {
			sig.Equals, sig.Prefix, sig.Suffix = lowered(s.Equals), lowered(s.Prefix), lowered(s.Suffix)
			sig.Contains, sig.ContainsAll = lowered(s.Contains), lowered(s.ContainsAll)
		}
		if s.Pattern != "" {
			re, err := regexp.Compile(s.Pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: header %s pattern: %v", ErrInvalidAdapter, s.Header, err)
			}
			sig.Pattern = re
		}
		out = append(out, sig)
	}
	return out, nil
}

func buildMarkers(specs []markerSpec) ([]engine.Marker, error) {
	out := make([]engine.Marker, 0, len(specs))
	for _, s := range specs {
		if s.Text == "" {
			return nil, fmt.Errorf("%w: empty marker", ErrInvalidAdapter)
		}
		m := engine.Marker{Text: s.Text, Keep: s.Keep}
		switch strings.ToLower(s.Mode) {
		case "", "prefix":
			m.Mode = engine.MatchPrefix
		case "equal":
			m.Mode = engine.MatchEqual
		case "contains":
			m.Mode = engine.MatchContains
		default:
			return nil, fmt.Errorf("%w: unknown marker mode %q", ErrInvalidAdapter, s.Mode)
		}
		out = append(out, m)
	}
	return out, nil
}
