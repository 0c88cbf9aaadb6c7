package preparer

import (
	"context"
	"errors"

	"github.com/vibast-solutions/ms-go-bounces/app/engine"
)

var ErrEmptyMessage = errors.New("message is empty")

// Message is a raw bounce on its way to the engine.
type Message struct {
	Raw     []byte
	Headers engine.Headers
	Body    string
}

type Step interface {
	Prepare(ctx context.Context, msg *Message) error
}

type Chain struct {
	steps []Step
}

// NewChain builds a message preparer chain from steps.
func NewChain(steps ...Step) *Chain {
	return &Chain{steps: steps}
}

// Default normalizes line endings and then flattens the MIME tree.
func Default() *Chain {
	return NewChain(NewNormalizer(), NewMIMEParser())
}

// Prepare runs all preparer steps over raw and returns the parsed message.
func (c *Chain) Prepare(ctx context.Context, raw []byte) (*Message, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyMessage
	}

	msg := &Message{Raw: raw, Headers: engine.Headers{}}
	for _, step := range c.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step.Prepare(ctx, msg); err != nil {
			return nil, err
		}
	}

	if len(msg.Headers) == 0 && msg.Body == "" {
		return nil, ErrEmptyMessage
	}
	return msg, nil
}
