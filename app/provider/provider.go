package provider

import (
	"context"

	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

// Suppressor keeps future mail away from recipients that hard bounced.
type Suppressor interface {
	Suppress(ctx context.Context, rec entity.DeliveryRecord) error
}
