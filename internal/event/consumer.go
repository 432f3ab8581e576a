package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Lopega12/sirorko-code-challenge/internal/repository"
	pkgkafka "github.com/Lopega12/sirorko-code-challenge/pkg/kafka"
)

// OrderProcessor runs the async payment step for one order.
type OrderProcessor interface {
	ProcessOrder(ctx context.Context, orderID uuid.UUID) error
}

// ConsumerHandler dispatches incoming Kafka events to the order processor
// and the job ledger.
type ConsumerHandler struct {
	processor OrderProcessor
	jobs      repository.OrderJobRepository
	logger    *slog.Logger
}

// NewConsumerHandler creates the event dispatch handler.
func NewConsumerHandler(processor OrderProcessor, jobs repository.OrderJobRepository, logger *slog.Logger) *ConsumerHandler {
	return &ConsumerHandler{
		processor: processor,
		jobs:      jobs,
		logger:    logger,
	}
}

// Handle routes an event by type. Unknown event types are logged and
// acknowledged so a topic shared with newer producers never wedges.
func (h *ConsumerHandler) Handle(ctx context.Context, e *pkgkafka.Event) error {
	switch e.EventType {
	case TopicOrderProcess:
		return h.handleOrderProcess(ctx, e)
	case TopicOrderCreated:
		return h.handleOrderCreated(ctx, e)
	default:
		h.logger.WarnContext(ctx, "unhandled event type",
			slog.String("event_type", e.EventType),
			slog.String("event_id", e.EventID),
		)
		return nil
	}
}

func (h *ConsumerHandler) handleOrderProcess(ctx context.Context, e *pkgkafka.Event) error {
	var data OrderProcessData
	if err := e.UnmarshalData(&data); err != nil {
		// Malformed payloads never become parseable on retry.
		h.logger.ErrorContext(ctx, "malformed order.process payload, skipping",
			slog.String("event_id", e.EventID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	orderID, err := uuid.Parse(data.OrderID)
	if err != nil {
		h.logger.ErrorContext(ctx, "order.process payload has invalid order id, skipping",
			slog.String("event_id", e.EventID),
			slog.String("order_id", data.OrderID),
		)
		return nil
	}

	return h.processor.ProcessOrder(ctx, orderID)
}

func (h *ConsumerHandler) handleOrderCreated(ctx context.Context, e *pkgkafka.Event) error {
	var data OrderCreatedData
	if err := e.UnmarshalData(&data); err != nil {
		h.logger.ErrorContext(ctx, "malformed order.created payload, skipping",
			slog.String("event_id", e.EventID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	orderID, err := uuid.Parse(data.OrderID)
	if err != nil {
		h.logger.ErrorContext(ctx, "order.created payload has invalid order id, skipping",
			slog.String("event_id", e.EventID),
			slog.String("order_id", data.OrderID),
		)
		return nil
	}

	now := time.Now().UTC()
	job := &repository.OrderJob{
		ID:        uuid.New(),
		OrderID:   orderID,
		Status:    repository.OrderJobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.jobs.Create(ctx, job); err != nil {
		return fmt.Errorf("create order job: %w", err)
	}

	return nil
}
