package provider

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

type suppressionAPI interface {
	PutSuppressedDestination(ctx context.Context, params *sesv2.PutSuppressedDestinationInput, optFns ...func(*sesv2.Options)) (*sesv2.PutSuppressedDestinationOutput, error)
}

type SESSuppressor struct {
	client suppressionAPI
}

// NewSESSuppressor builds a suppressor backed by the SES account suppression list.
func NewSESSuppressor(cfg aws.Config) *SESSuppressor {
	return &SESSuppressor{client: sesv2.NewFromConfig(cfg)}
}

// Suppress adds a permanently bounced recipient to the suppression list with
// reason BOUNCE. Soft bounces are ignored.
func (p *SESSuppressor) Suppress(ctx context.Context, rec entity.DeliveryRecord) error {
	if rec.Recipient == "" {
		return fmt.Errorf("recipient is required")
	}
	if rec.Temporary() {
		return nil
	}

	_, err := p.client.PutSuppressedDestination(ctx, &sesv2.PutSuppressedDestinationInput{
		EmailAddress: aws.String(rec.Recipient),
		Reason:       types.SuppressionListReasonBounce,
	})
	if err != nil {
		return fmt.Errorf("ses put suppressed destination: %w", err)
	}
	return nil
}
