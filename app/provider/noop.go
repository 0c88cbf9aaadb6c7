package provider

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

// NoopSuppressor only logs the recipient it would have suppressed.
type NoopSuppressor struct{}

// NewNoopSuppressor constructs a no-op suppressor.
func NewNoopSuppressor() *NoopSuppressor {
	return &NoopSuppressor{}
}

func (p *NoopSuppressor) Suppress(_ context.Context, rec entity.DeliveryRecord) error {
	logrus.WithFields(logrus.Fields{
		"recipient": rec.Recipient,
		"reason":    rec.Reason,
	}).Debug("suppression skipped by noop provider")
	return nil
}
