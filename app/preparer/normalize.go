package preparer

import (
	"bytes"
	"context"
)

// Normalizer converts CRLF and bare CR line endings to LF and drops a leading
// mbox "From " envelope line.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) Prepare(_ context.Context, msg *Message) error {
	raw := bytes.ReplaceAll(msg.Raw, []byte("\r\n"), []byte("\n"))
	raw = bytes.ReplaceAll(raw, []byte("\r"), []byte("\n"))

	if bytes.HasPrefix(raw, []byte("From ")) {
		if i := bytes.IndexByte(raw, '\n'); i >= 0 {
			raw = raw[i+1:]
		} else {
			raw = nil
		}
	}

	msg.Raw = raw
	if len(bytes.TrimSpace(raw)) == 0 {
		return ErrEmptyMessage
	}
	return nil
}
