package service

import "errors"

var (
	ErrDuplicateRequestID = errors.New("duplicate request_id")
	ErrUnrecognized       = errors.New("message is not a recognized bounce")
	ErrNotFound           = errors.New("bounce request not found")
	ErrRetriesExhausted   = errors.New("bounce processing retries exhausted")
)
