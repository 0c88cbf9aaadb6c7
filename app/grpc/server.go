package grpc

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vibast-solutions/ms-go-bounces/app/dto"
	"github.com/vibast-solutions/ms-go-bounces/app/queue"
	"github.com/vibast-solutions/ms-go-bounces/app/service"
)

// Publisher queues a bounce for the consumer.
type Publisher interface {
	Publish(ctx context.Context, msg queue.BounceMessage) error
}

type Server struct {
	bounceService *service.BounceService
	producer      Publisher
}

// NewServer constructs a gRPC server handler.
func NewServer(bounceService *service.BounceService, producer Publisher) *Server {
	return &Server{bounceService: bounceService, producer: producer}
}

// Parse classifies a message synchronously. Unrecognized input maps to NotFound.
func (s *Server) Parse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	msg := dto.ParseFromGRPC(req)
	if err := msg.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res, err := s.bounceService.Parse(ctx, []byte(msg.Raw))
	if err != nil {
		if errors.Is(err, service.ErrUnrecognized) {
			return nil, status.Error(codes.NotFound, "message is not a recognized bounce")
		}
		logrus.WithError(err).Error("parse bounce")
		return nil, status.Error(codes.Internal, "failed to parse message")
	}

	out, err := dto.ResultToStruct(res)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode result")
	}
	return out, nil
}

// Submit stores history and enqueues a bounce for asynchronous processing.
func (s *Server) Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	msg := dto.SubmitFromGRPC(req)
	if err := msg.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if msg.RequestID == "" {
		msg.RequestID = ulid.Make().String()
	}

	if err := s.bounceService.CreateRequest(ctx, msg.RequestID, msg.Raw); err != nil {
		if errors.Is(err, service.ErrDuplicateRequestID) {
			return nil, status.Error(codes.AlreadyExists, "duplicate request_id")
		}
		logrus.WithError(err).WithField("request_id", msg.RequestID).Error("create bounce history")
		return nil, status.Error(codes.Internal, "failed to create bounce history")
	}

	if err := s.producer.Publish(ctx, queue.BounceMessage{RequestID: msg.RequestID, Raw: msg.Raw}); err != nil {
		logrus.WithError(err).WithField("request_id", msg.RequestID).Error("publish bounce")
		_ = s.bounceService.DeleteRequest(ctx, msg.RequestID)
		return nil, status.Error(codes.Internal, "failed to queue bounce")
	}

	return structpb.NewStruct(map[string]interface{}{"request_id": msg.RequestID})
}
