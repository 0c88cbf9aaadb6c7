package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/vibast-solutions/ms-go-bounces/app/dto"
	"github.com/vibast-solutions/ms-go-bounces/app/queue"
	"github.com/vibast-solutions/ms-go-bounces/app/service"
)

// Publisher queues a bounce for the consumer.
type Publisher interface {
	Publish(ctx context.Context, msg queue.BounceMessage) error
}

type BounceController struct {
	bounceService *service.BounceService
	producer      Publisher
}

// NewBounceController constructs the HTTP bounce controller.
func NewBounceController(bounceService *service.BounceService, producer Publisher) *BounceController {
	return &BounceController{bounceService: bounceService, producer: producer}
}

// Parse classifies a message synchronously and returns its records.
func (c *BounceController) Parse(ctx echo.Context) error {
	req, err := dto.ParseFromEchoContext(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	res, err := c.bounceService.Parse(ctx.Request().Context(), []byte(req.Raw))
	if err != nil {
		if errors.Is(err, service.ErrUnrecognized) {
			return ctx.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "message is not a recognized bounce"})
		}
		logrus.WithError(err).Error("parse bounce")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to parse message"})
	}

	return ctx.JSON(http.StatusOK, res)
}

// Submit stores and enqueues a bounce for asynchronous processing.
func (c *BounceController) Submit(ctx echo.Context) error {
	req, err := dto.SubmitFromEchoContext(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if req.RequestID == "" {
		req.RequestID = ulid.Make().String()
	}

	reqCtx := ctx.Request().Context()
	if err := c.bounceService.CreateRequest(reqCtx, req.RequestID, req.Raw); err != nil {
		if errors.Is(err, service.ErrDuplicateRequestID) {
			return ctx.JSON(http.StatusConflict, map[string]string{"error": "duplicate request_id"})
		}
		logrus.WithError(err).WithField("request_id", req.RequestID).Error("create bounce history")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create bounce history"})
	}

	if err := c.producer.Publish(reqCtx, queue.BounceMessage{RequestID: req.RequestID, Raw: req.Raw}); err != nil {
		logrus.WithError(err).WithField("request_id", req.RequestID).Error("publish bounce")
		_ = c.bounceService.DeleteRequest(reqCtx, req.RequestID)
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to queue bounce"})
	}

	return ctx.JSON(http.StatusAccepted, map[string]string{"request_id": req.RequestID})
}

// Records returns the stored outcome of a submitted bounce.
func (c *BounceController) Records(ctx echo.Context) error {
	requestID := ctx.Param("request_id")
	if requestID == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "request_id is required"})
	}

	history, records, err := c.bounceService.Records(ctx.Request().Context(), requestID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "request_id not found"})
		}
		logrus.WithError(err).WithField("request_id", requestID).Error("load bounce records")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load records"})
	}

	return ctx.JSON(http.StatusOK, dto.NewRecordsResponse(history, records))
}
