package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type BounceProducer struct {
	client *redis.Client
}

// NewBounceProducer constructs a Redis stream producer.
func NewBounceProducer(client *redis.Client) *BounceProducer {
	return &BounceProducer{client: client}
}

// Publish pushes a bounce onto the ingest stream.
func (p *BounceProducer) Publish(ctx context.Context, msg BounceMessage) error {
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamName,
		Values: map[string]interface{}{
			"request_id": msg.RequestID,
			"raw":        msg.Raw,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd to %s: %w", StreamName, err)
	}
	return nil
}
