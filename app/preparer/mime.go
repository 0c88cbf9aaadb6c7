package preparer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/vibast-solutions/ms-go-bounces/app/engine"
)

var ErrMalformed = errors.New("malformed message")

// maxPartSize caps the decoded size of a single MIME part.
const maxPartSize = 10 << 20

func init() {
	message.CharsetReader = charsetReader
}

// charsetReader prefers go-message's table and falls back to the IANA index.
func charsetReader(name string, input io.Reader) (io.Reader, error) {
	if r, err := charset.Reader(name, input); err == nil {
		return r, nil
	}
	enc, err := ianaindex.IANA.Encoding(strings.ToLower(name))
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unhandled charset %q", name)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

// MIMEParser reads the top-level headers and flattens the body. Every leaf part
// of a multipart message is written as a "Content-Type: <type>" line, a blank
// line and the decoded part body, so adapters can match part boundaries as text.
type MIMEParser struct{}

func NewMIMEParser() *MIMEParser {
	return &MIMEParser{}
}

func (p *MIMEParser) Prepare(_ context.Context, msg *Message) error {
	e, err := message.Read(bytes.NewReader(msg.Raw))
	if err != nil && !tolerable(err) {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	msg.Headers = headersOf(e.Header)

	var b strings.Builder
	if err := flatten(&b, e, true); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	msg.Body = strings.ReplaceAll(b.String(), "\r\n", "\n")
	return nil
}

func tolerable(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}

func headersOf(h message.Header) engine.Headers {
	out := engine.Headers{}
	fields := h.Fields()
	for fields.Next() {
		value, err := fields.Text()
		if err != nil {
			value = fields.Value()
		}
		out.Add(fields.Key(), engine.Sweep(value))
	}
	return out
}

func flatten(b *strings.Builder, e *message.Entity, top bool) error {
	if mr := e.MultipartReader(); mr != nil {
		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil && !tolerable(err) {
				return err
			}
			if err := flatten(b, part, false); err != nil {
				return err
			}
		}
	}

	if !top {
		mediaType, _, err := e.Header.ContentType()
		if err != nil || mediaType == "" {
			mediaType = "text/plain"
		}
		b.WriteString("Content-Type: ")
		b.WriteString(mediaType)
		b.WriteString("\n\n")
	}

	body, err := io.ReadAll(io.LimitReader(e.Body, maxPartSize))
	if err != nil {
		return err
	}
	b.Write(body)
	if len(body) > 0 && body[len(body)-1] != '\n' {
		b.WriteByte('\n')
	}
	if !top {
		b.WriteByte('\n')
	}
	return nil
}
