package queue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/vibast-solutions/ms-go-bounces/app/service"
)

type fakeProcessor struct {
	mu  sync.Mutex
	err error
	// failFor overrides err per request ID.
	failFor    map[string]error
	requestIDs []string
	raws       []string
}

func (p *fakeProcessor) Process(ctx context.Context, raw string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, _ := service.RequestIDFromContext(ctx)
	p.requestIDs = append(p.requestIDs, id)
	p.raws = append(p.raws, raw)
	if err, ok := p.failFor[id]; ok {
		return err
	}
	return p.err
}

func (p *fakeProcessor) calls(requestID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, id := range p.requestIDs {
		if id == requestID {
			n++
		}
	}
	return n
}

func skipUnsupported(t *testing.T, err error) {
	t.Helper()
	if strings.Contains(err.Error(), "unknown command") {
		t.Skipf("streams not supported by miniredis: %v", err)
	}
}

// readOne publishes a bounce and reads it back through the consumer group.
func readOne(t *testing.T, client *redis.Client) redis.XMessage {
	t.Helper()
	ctx := context.Background()

	if err := client.XGroupCreateMkStream(ctx, StreamName, ConsumerGroup, "0").Err(); err != nil {
		skipUnsupported(t, err)
		t.Fatalf("XGroupCreateMkStream: %v", err)
	}
	if err := NewBounceProducer(client).Publish(ctx, BounceMessage{RequestID: "req-1", Raw: "raw bounce"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	streams, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroup,
		Consumer: "c1",
		Streams:  []string{StreamName, ">"},
		Count:    1,
	}).Result()
	if err != nil {
		skipUnsupported(t, err)
		t.Fatalf("XReadGroup: %v", err)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		t.Fatalf("expected a message to be read")
	}
	return streams[0].Messages[0]
}

func TestBounceConsumerProcessMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantPending int64
		wantDead    int64
	}{
		{name: "parsed", err: nil, wantPending: 0},
		{name: "unrecognized", err: service.ErrUnrecognized, wantPending: 0},
		{name: "failed", err: errors.New("db down"), wantPending: 1},
		{name: "retries exhausted", err: service.ErrRetriesExhausted, wantPending: 0, wantDead: 1},
		{name: "history missing", err: service.ErrNotFound, wantPending: 0, wantDead: 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mr, err := miniredis.Run()
			if err != nil {
				t.Fatalf("miniredis.Run: %v", err)
			}
			defer mr.Close()

			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			defer client.Close()

			msg := readOne(t, client)
			processor := &fakeProcessor{err: tc.err}
			consumer := NewBounceConsumer(client, processor, "c1")
			consumer.processMessage(context.Background(), msg)

			if len(processor.requestIDs) != 1 || processor.requestIDs[0] != "req-1" || processor.raws[0] != "raw bounce" {
				t.Fatalf("unexpected processor calls: %v %v", processor.requestIDs, processor.raws)
			}

			pending, err := client.XPending(context.Background(), StreamName, ConsumerGroup).Result()
			if err != nil {
				skipUnsupported(t, err)
				t.Fatalf("XPending: %v", err)
			}
			if pending.Count != tc.wantPending {
				t.Fatalf("expected %d pending, got %d", tc.wantPending, pending.Count)
			}

			dead, err := client.XLen(context.Background(), DeadLetterStream).Result()
			if err != nil {
				t.Fatalf("XLen: %v", err)
			}
			if dead != tc.wantDead {
				t.Fatalf("expected %d dead letters, got %d", tc.wantDead, dead)
			}
		})
	}
}

func TestBounceConsumerRunSkipsPastFailingPendingMessage(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	// req-1 is delivered but never acked, so it sits in the pending list.
	readOne(t, client)
	if err := NewBounceProducer(client).Publish(context.Background(), BounceMessage{RequestID: "req-2", Raw: "good bounce"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	processor := &fakeProcessor{failFor: map[string]error{"req-1": errors.New("db down")}}
	consumer := NewBounceConsumer(client, processor, "c1")
	consumer.block = 50 * time.Millisecond
	consumer.redeliver = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for processor.calls("req-2") == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("consumer did not stop")
	}

	if processor.calls("req-2") != 1 {
		t.Fatalf("expected the good bounce to be processed once, got %d", processor.calls("req-2"))
	}
	if n := processor.calls("req-1"); n != 1 {
		t.Fatalf("expected one attempt at the failing bounce, got %d", n)
	}

	pending, err := client.XPending(context.Background(), StreamName, ConsumerGroup).Result()
	if err != nil {
		skipUnsupported(t, err)
		t.Fatalf("XPending: %v", err)
	}
	if pending.Count != 1 {
		t.Fatalf("expected only the failing bounce pending, got %d", pending.Count)
	}
}
