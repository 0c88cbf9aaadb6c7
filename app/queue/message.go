package queue

const StreamName = "bounces:raw:ingest"
const ConsumerGroup = "bounce-consumers"

// DeadLetterStream keeps queued bounces the consumer gave up on.
const DeadLetterStream = "bounces:raw:dead"

// BounceMessage is one ingested bounce waiting to be parsed.
type BounceMessage struct {
	RequestID string
	Raw       string
}
