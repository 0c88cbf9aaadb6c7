package service

import (
	"context"

	"github.com/sirupsen/logrus"
)

type requestIDKey struct{}

// WithRequestID stores the ingest request ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext extracts a non-empty request ID from the context.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey{}).(string)
	return requestID, ok && requestID != ""
}

// Logger returns the standard logger tagged with the request ID of ctx.
func Logger(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(logrus.StandardLogger())
	if requestID, ok := RequestIDFromContext(ctx); ok {
		entry = entry.WithField("request_id", requestID)
	}
	return entry
}
