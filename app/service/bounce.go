package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-message/textproto"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/vibast-solutions/ms-go-bounces/app/engine"
	"github.com/vibast-solutions/ms-go-bounces/app/entity"
	"github.com/vibast-solutions/ms-go-bounces/app/lock"
	"github.com/vibast-solutions/ms-go-bounces/app/metrics"
	"github.com/vibast-solutions/ms-go-bounces/app/preparer"
	"github.com/vibast-solutions/ms-go-bounces/app/provider"
	"github.com/vibast-solutions/ms-go-bounces/app/repository"
)

// OriginalRequestHeader is stamped on outgoing mail by the notifications
// service and carries its email_history request ID.
const OriginalRequestHeader = "X-Request-Id"

const processLockTTL = 2 * time.Minute

// DefaultMaxRetries is how many failed attempts a queued bounce gets.
const DefaultMaxRetries = 5

type Preparer interface {
	Prepare(ctx context.Context, raw []byte) (*preparer.Message, error)
}

type Inquirer interface {
	Inquire(h engine.Headers, body string) (*engine.Result, bool)
}

type BounceService struct {
	preparer   Preparer
	inquirer   Inquirer
	history    *repository.BounceHistoryRepository
	records    *repository.DeliveryRecordRepository
	emails     *repository.EmailHistoryRepository
	suppressor provider.Suppressor
	locker     lock.Locker
	maxRetries int
}

// NewBounceService builds the bounce service with dependencies.
func NewBounceService(
	prep Preparer,
	inquirer Inquirer,
	history *repository.BounceHistoryRepository,
	records *repository.DeliveryRecordRepository,
	emails *repository.EmailHistoryRepository,
	suppressor provider.Suppressor,
	locker lock.Locker,
) *BounceService {
	return &BounceService{
		preparer:   prep,
		inquirer:   inquirer,
		history:    history,
		records:    records,
		emails:     emails,
		suppressor: suppressor,
		locker:     locker,
		maxRetries: DefaultMaxRetries,
	}
}

// WithMaxRetries sets the failed attempt budget of Process. Values below one are ignored.
func (s *BounceService) WithMaxRetries(n int) *BounceService {
	if n > 0 {
		s.maxRetries = n
	}
	return s
}

// Parse prepares raw and runs it through the adapters without persisting anything.
func (s *BounceService) Parse(ctx context.Context, raw []byte) (*engine.Result, error) {
	start := time.Now()

	msg, err := s.preparer.Prepare(ctx, raw)
	if err != nil {
		if errors.Is(err, preparer.ErrEmptyMessage) || errors.Is(err, preparer.ErrMalformed) {
			metrics.ObserveParse(nil, time.Since(start))
			return nil, fmt.Errorf("%w: %v", ErrUnrecognized, err)
		}
		return nil, fmt.Errorf("prepare message: %w", err)
	}

	res, ok := s.inquirer.Inquire(msg.Headers, msg.Body)
	if !ok {
		metrics.ObserveParse(nil, time.Since(start))
		return nil, ErrUnrecognized
	}
	metrics.ObserveParse(res, time.Since(start))
	return res, nil
}

// CreateRequest records an ingested bounce in history.
func (s *BounceService) CreateRequest(ctx context.Context, requestID string, raw string) error {
	if err := s.history.Create(ctx, requestID, raw, entity.BounceStatusNew); err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrDuplicateRequestID
		}
		return err
	}
	return nil
}

// DeleteRequest removes a history entry by request ID.
func (s *BounceService) DeleteRequest(ctx context.Context, requestID string) error {
	return s.history.DeleteByRequestID(ctx, requestID)
}

// Records returns the stored delivery records of an ingested bounce.
func (s *BounceService) Records(ctx context.Context, requestID string) (*entity.BounceHistory, []entity.DeliveryRecord, error) {
	h, err := s.history.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("find bounce history: %w", err)
	}
	if h == nil {
		return nil, nil, ErrNotFound
	}
	records, err := s.records.ListByRequestID(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("list delivery records: %w", err)
	}
	return h, records, nil
}

// Process parses a queued bounce, stores its records and propagates hard and
// soft failures to the original send. The request ID comes from ctx.
// A request without history yields ErrNotFound and one that failed maxRetries
// times yields ErrRetriesExhausted; neither will succeed on redelivery.
func (s *BounceService) Process(ctx context.Context, raw string) error {
	requestID, ok := RequestIDFromContext(ctx)
	if !ok {
		return fmt.Errorf("request_id is required in context")
	}

	err := lock.With(ctx, s.locker, lock.BounceKey(requestID), processLockTTL, func(ctx context.Context) error {
		return s.process(ctx, requestID, raw)
	})
	if err != nil && (errors.Is(err, lock.ErrNotAcquired) || errors.Is(err, lock.ErrAlreadyHeld)) {
		return fmt.Errorf("acquire lock: %w", err)
	}
	return err
}

func (s *BounceService) process(ctx context.Context, requestID string, raw string) error {
	log := Logger(ctx)

	h, err := s.history.FindByRequestID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("find bounce history: %w", err)
	}
	if h == nil {
		return ErrNotFound
	}
	if h.Status == entity.BounceStatusParsed {
		log.Debug("bounce already parsed")
		return nil
	}
	if h.Retries >= s.maxRetries {
		log.WithField("retries", h.Retries).Warn("giving up on bounce")
		return fmt.Errorf("%w: %d failed attempts", ErrRetriesExhausted, h.Retries)
	}

	if err := s.history.UpdateStatus(ctx, requestID, entity.BounceStatusProcessing); err != nil {
		return fmt.Errorf("update status to processing: %w", err)
	}

	res, err := s.Parse(ctx, []byte(raw))
	if errors.Is(err, ErrUnrecognized) {
		if updateErr := s.history.UpdateStatus(ctx, requestID, entity.BounceStatusUnrecognized); updateErr != nil {
			return fmt.Errorf("parse: %v; update status: %w", err, updateErr)
		}
		log.Info("message is not a recognized bounce")
		return err
	}
	if err != nil {
		return s.fail(ctx, requestID, fmt.Errorf("parse: %w", err))
	}

	if err := s.records.Replace(ctx, requestID, res.Records); err != nil {
		return s.fail(ctx, requestID, fmt.Errorf("store delivery records: %w", err))
	}
	if err := s.propagate(ctx, res); err != nil {
		return s.fail(ctx, requestID, err)
	}
	if err := s.history.MarkParsed(ctx, requestID, res.Adapter); err != nil {
		return fmt.Errorf("update status to parsed: %w", err)
	}

	log.WithFields(logrus.Fields{
		"adapter": res.Adapter,
		"records": len(res.Records),
	}).Info("bounce parsed")
	return nil
}

// fail marks the request failed and counts the attempt. The original error is returned.
func (s *BounceService) fail(ctx context.Context, requestID string, err error) error {
	if updateErr := s.history.UpdateStatus(ctx, requestID, entity.BounceStatusFailed); updateErr != nil {
		return fmt.Errorf("%v; update status: %w", err, updateErr)
	}
	if retryErr := s.history.IncrementRetries(ctx, requestID); retryErr != nil {
		return fmt.Errorf("%v; increment retries: %w", err, retryErr)
	}
	return err
}

// propagate flags the original send in email_history and suppresses
// recipients that bounced permanently. Every step is idempotent.
func (s *BounceService) propagate(ctx context.Context, res *engine.Result) error {
	if sendID := originalRequestID(res.Original); sendID != "" && len(res.Records) > 0 {
		status := entity.EmailStatusTemporaryFailure
		for _, rec := range res.Records {
			if st := entity.EmailStatusFor(rec); st > status {
				status = st
			}
		}
		changed, err := s.emails.MarkBounced(ctx, sendID, status)
		if err != nil {
			return fmt.Errorf("update email history: %w", err)
		}
		Logger(ctx).WithFields(logrus.Fields{
			"email_request_id": sendID,
			"status":           status,
			"changed":          changed,
		}).Debug("email history updated from bounce")
	}

	for _, rec := range res.Records {
		if rec.Temporary() {
			continue
		}
		err := s.suppressor.Suppress(ctx, rec)
		metrics.ObserveSuppression(err)
		if err != nil {
			return fmt.Errorf("suppress %s: %w", rec.Recipient, err)
		}
	}
	return nil
}

// originalRequestID reads OriginalRequestHeader from the returned message headers.
func originalRequestID(original string) string {
	original = strings.TrimLeft(original, "\n")
	if original == "" {
		return ""
	}
	h, err := textproto.ReadHeader(bufio.NewReader(strings.NewReader(strings.TrimRight(original, "\n") + "\n\n")))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h.Get(OriginalRequestHeader))
}
