package dto

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vibast-solutions/ms-go-bounces/app/engine"
	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

// MaxRawSize caps the size of a submitted message.
const MaxRawSize = 10 << 20

var (
	ErrMissingRaw       = errors.New("raw is required")
	ErrRawTooLarge      = errors.New("raw exceeds 10MB")
	ErrInvalidRequestID = errors.New("request_id must be 1-64 characters of letters, digits, '-' or '_'")
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ParseRequest asks for a synchronous parse of one message.
type ParseRequest struct {
	Raw string `json:"raw"`
}

// SubmitRequest queues one message for asynchronous processing. An empty
// RequestID is replaced with a generated one by the handler.
type SubmitRequest struct {
	RequestID string `json:"request_id"`
	Raw       string `json:"raw"`
}

// ParseFromEchoContext binds a parse request from Echo.
func ParseFromEchoContext(ctx echo.Context) (ParseRequest, error) {
	var req ParseRequest
	if err := ctx.Bind(&req); err != nil {
		return ParseRequest{}, err
	}
	return req, nil
}

// SubmitFromEchoContext binds and normalizes a submit request from Echo.
func SubmitFromEchoContext(ctx echo.Context) (SubmitRequest, error) {
	var req SubmitRequest
	if err := ctx.Bind(&req); err != nil {
		return SubmitRequest{}, err
	}
	req.normalize()
	return req, nil
}

// ParseFromGRPC reads a parse request from a Struct message.
func ParseFromGRPC(req *structpb.Struct) ParseRequest {
	return ParseRequest{Raw: stringField(req, "raw")}
}

// SubmitFromGRPC reads and normalizes a submit request from a Struct message.
func SubmitFromGRPC(req *structpb.Struct) SubmitRequest {
	dto := SubmitRequest{
		RequestID: stringField(req, "request_id"),
		Raw:       stringField(req, "raw"),
	}
	dto.normalize()
	return dto
}

// Validate checks the message is present and not oversized.
func (r *ParseRequest) Validate() error {
	return validateRaw(r.Raw)
}

// Validate checks the message and, when set, the request ID format.
func (r *SubmitRequest) Validate() error {
	if err := validateRaw(r.Raw); err != nil {
		return err
	}
	if r.RequestID != "" && !requestIDPattern.MatchString(r.RequestID) {
		return ErrInvalidRequestID
	}
	return nil
}

func (r *SubmitRequest) normalize() {
	r.RequestID = strings.TrimSpace(r.RequestID)
}

// ResultToStruct converts a parse result into a Struct message.
func ResultToStruct(res *engine.Result) (*structpb.Struct, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}

func validateRaw(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrMissingRaw
	}
	if len(raw) > MaxRawSize {
		return ErrRawTooLarge
	}
	return nil
}

func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

// RecordsResponse is the stored outcome of a submitted bounce.
type RecordsResponse struct {
	RequestID string                  `json:"request_id"`
	Adapter   string                  `json:"adapter,omitempty"`
	Status    string                  `json:"status"`
	Retries   int                     `json:"retries"`
	Records   []entity.DeliveryRecord `json:"records"`
}

// NewRecordsResponse builds the records payload.
func NewRecordsResponse(h *entity.BounceHistory, records []entity.DeliveryRecord) RecordsResponse {
	if records == nil {
		records = []entity.DeliveryRecord{}
	}
	return RecordsResponse{
		RequestID: h.RequestID,
		Adapter:   h.Adapter,
		Status:    entity.BounceStatusName(h.Status),
		Retries:   h.Retries,
		Records:   records,
	}
}
