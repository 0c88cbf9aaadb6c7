package entity

import "strings"

// DeliveryRecord is the normalized outcome for one bounced recipient.
type DeliveryRecord struct {
	Recipient      string `json:"recipient"`
	Alias          string `json:"alias,omitempty"`
	Action         string `json:"action,omitempty"`
	Date           string `json:"date,omitempty"`
	LocalHost      string `json:"lhost,omitempty"`
	RemoteHost     string `json:"rhost,omitempty"`
	Command        string `json:"command,omitempty"`
	Status         string `json:"status"`
	ReplyCode      string `json:"reply_code,omitempty"`
	DiagnosticType string `json:"diagnostic_type,omitempty"`
	Diagnosis      string `json:"diagnosis"`
	Reason         Reason `json:"reason"`
	EnvelopeID     string `json:"envelope_id,omitempty"`
	Adapter        string `json:"adapter,omitempty"`
}

// Temporary reports whether the record describes a soft bounce.
func (r DeliveryRecord) Temporary() bool {
	if r.Status != "" {
		return strings.HasPrefix(r.Status, "4")
	}
	if r.ReplyCode != "" {
		return strings.HasPrefix(r.ReplyCode, "4")
	}
	return r.Reason.DefaultsToTemporary()
}
