package engine

import (
	"regexp"
	"strings"
)

// Signal is one header test contributing to vendor recognition. It matches when
// the header is present and any of the configured conditions holds for any value.
type Signal struct {
	Header  string
	Present bool
	Equals  []string
	Prefix  []string
	Suffix  []string
	// Contains matches when any substring occurs; ContainsAll when all of them do.
	Contains    []string
	ContainsAll []string
	Pattern     *regexp.Regexp
	// Fold lower-cases the header value before comparing.
	Fold bool
}

// Match tests the signal against headers.
func (s Signal) Match(h Headers) bool {
	values := h.Values(s.Header)
	if len(values) == 0 {
		return false
	}
	if s.Present {
		return true
	}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if s.Fold {
			v = strings.ToLower(v)
		}
		if s.matchValue(v) {
			return true
		}
	}
	return false
}

func (s Signal) matchValue(v string) bool {
	for _, e := range s.Equals {
		if v == e {
			return true
		}
	}
	for _, p := range s.Prefix {
		if strings.HasPrefix(v, p) {
			return true
		}
	}
	for _, p := range s.Suffix {
		if strings.HasSuffix(v, p) {
			return true
		}
	}
	for _, c := range s.Contains {
		if strings.Contains(v, c) {
			return true
		}
	}
	if len(s.ContainsAll) > 0 {
		all := true
		for _, c := range s.ContainsAll {
			if !strings.Contains(v, c) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return s.Pattern != nil && s.Pattern.MatchString(v)
}

// Recognizer scores signals against a threshold. Any matching Reject signal vetoes.
type Recognizer struct {
	Signals   []Signal
	Threshold int
	Reject    []Signal
}

// Score counts matching signals.
func (r Recognizer) Score(h Headers) int {
	score := 0
	for _, s := range r.Signals {
		if s.Match(h) {
			score++
		}
	}
	return score
}

// Recognize reports whether the message clears the threshold.
func (r Recognizer) Recognize(h Headers) bool {
	for _, s := range r.Reject {
		if s.Match(h) {
			return false
		}
	}
	if r.Threshold <= 0 {
		return true
	}
	return r.Score(h) >= r.Threshold
}
