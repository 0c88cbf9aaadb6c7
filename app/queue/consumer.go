package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/vibast-solutions/ms-go-bounces/app/metrics"
	"github.com/vibast-solutions/ms-go-bounces/app/service"
)

const (
	processTimeout = 30 * time.Second
	readBlock      = 5 * time.Second
	redeliverEvery = time.Minute
)

// Processor parses and stores one queued bounce. The request ID travels in ctx.
type Processor interface {
	Process(ctx context.Context, raw string) error
}

type BounceConsumer struct {
	client       *redis.Client
	processor    Processor
	consumerName string
	// block bounds a read for new messages; redeliver is how often the
	// pending list is walked again while the consumer runs.
	block     time.Duration
	redeliver time.Duration
}

// NewBounceConsumer constructs a Redis stream consumer.
func NewBounceConsumer(client *redis.Client, processor Processor, consumerName string) *BounceConsumer {
	return &BounceConsumer{
		client:       client,
		processor:    processor,
		consumerName: consumerName,
		block:        readBlock,
		redeliver:    redeliverEvery,
	}
}

// Run starts the consumer loop and blocks until context cancellation.
func (c *BounceConsumer) Run(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	log := logrus.WithFields(logrus.Fields{"consumer": c.consumerName, "stream": StreamName})
	log.Info("consumer started")

	// Walk the pending list first, then switch to new messages. While walking,
	// startID moves past every delivered entry so a message that keeps failing
	// cannot hide the ones behind it.
	startID := "0"
	drained := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Info("consumer shutting down")
			return nil
		default:
		}

		if startID == ">" && time.Since(drained) >= c.redeliver {
			startID = "0"
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    ConsumerGroup,
			Consumer: c.consumerName,
			Streams:  []string{StreamName, startID},
			Count:    1,
			Block:    c.block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				if startID != ">" {
					startID, drained = ">", time.Now()
				}
				continue
			}
			if ctx.Err() != nil {
				log.Info("consumer shutting down")
				return nil
			}
			log.WithError(err).Warn("xreadgroup failed")
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			if len(stream.Messages) == 0 && startID != ">" {
				startID, drained = ">", time.Now()
				continue
			}
			for _, msg := range stream.Messages {
				c.processMessage(ctx, msg)
				if startID != ">" {
					startID = msg.ID
				}
			}
		}
	}
}

// processMessage handles a single message. Parsed and unrecognized bounces
// are acked. Bounces that can never succeed are copied to DeadLetterStream and
// acked. Anything else stays pending for redelivery.
func (c *BounceConsumer) processMessage(ctx context.Context, msg redis.XMessage) {
	requestID, _ := msg.Values["request_id"].(string)
	raw, _ := msg.Values["raw"].(string)

	procCtx := service.WithRequestID(ctx, requestID)
	procCtx, cancel := context.WithTimeout(procCtx, processTimeout)
	defer cancel()

	log := service.Logger(procCtx).WithField("message_id", msg.ID)
	log.Debug("processing bounce")

	var err error
	if requestID == "" {
		err = service.ErrNotFound
	} else {
		err = c.processor.Process(procCtx, raw)
	}
	switch {
	case err == nil:
		metrics.ObserveIngest("parsed")
	case errors.Is(err, service.ErrUnrecognized):
		metrics.ObserveIngest("unrecognized")
	case errors.Is(err, service.ErrRetriesExhausted), errors.Is(err, service.ErrNotFound):
		metrics.ObserveIngest("dead_lettered")
		log.WithError(err).Warn("moving bounce to dead letter stream")
		if dlErr := c.deadLetter(ctx, msg, err); dlErr != nil {
			log.WithError(dlErr).Error("dead letter publish failed, message stays pending")
			return
		}
	default:
		metrics.ObserveIngest("failed")
		log.WithError(err).Warn("bounce processing failed, message stays pending")
		return
	}

	if err := c.client.XAck(ctx, StreamName, ConsumerGroup, msg.ID).Err(); err != nil {
		log.WithError(err).Error("xack failed")
	}
}

func (c *BounceConsumer) deadLetter(ctx context.Context, msg redis.XMessage, cause error) error {
	return c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: DeadLetterStream,
		Values: map[string]interface{}{
			"message_id": msg.ID,
			"request_id": msg.Values["request_id"],
			"raw":        msg.Values["raw"],
			"error":      cause.Error(),
		},
	}).Err()
}

// ensureGroup creates the stream and consumer group if missing.
func (c *BounceConsumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, StreamName, ConsumerGroup, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}
