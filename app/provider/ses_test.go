package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

type fakeSES struct {
	err   error
	calls []*sesv2.PutSuppressedDestinationInput
}

func (f *fakeSES) PutSuppressedDestination(_ context.Context, in *sesv2.PutSuppressedDestinationInput, _ ...func(*sesv2.Options)) (*sesv2.PutSuppressedDestinationOutput, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.PutSuppressedDestinationOutput{}, nil
}

func TestSESSuppressor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rec     entity.DeliveryRecord
		apiErr  error
		calls   int
		wantErr bool
	}{
		{name: "permanent", rec: entity.DeliveryRecord{Recipient: "a@example.jp", Status: "5.1.1"}, calls: 1},
		{name: "temporary", rec: entity.DeliveryRecord{Recipient: "a@example.jp", Status: "4.2.2"}, calls: 0},
		{name: "missing recipient", rec: entity.DeliveryRecord{Status: "5.1.1"}, calls: 0, wantErr: true},
		{name: "api error", rec: entity.DeliveryRecord{Recipient: "a@example.jp", Status: "5.1.1"}, apiErr: errors.New("throttled"), calls: 1, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			api := &fakeSES{err: tc.apiErr}
			s := &SESSuppressor{client: api}
			err := s.Suppress(context.Background(), tc.rec)
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(api.calls) != tc.calls {
				t.Fatalf("expected %d calls, got %d", tc.calls, len(api.calls))
			}
			if tc.calls == 1 {
				in := api.calls[0]
				if aws.ToString(in.EmailAddress) != tc.rec.Recipient || in.Reason != types.SuppressionListReasonBounce {
					t.Fatalf("unexpected input: %+v", in)
				}
			}
		})
	}
}

func TestNoopSuppressor(t *testing.T) {
	t.Parallel()

	if err := NewNoopSuppressor().Suppress(context.Background(), entity.DeliveryRecord{Recipient: "a@example.jp"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
