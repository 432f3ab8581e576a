package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lopega12/sirorko-code-challenge/internal/domain"
	pkgkafka "github.com/Lopega12/sirorko-code-challenge/pkg/kafka"
)

// Kafka topics for the order lifecycle.
const (
	// TopicOrderProcess carries the checkout-to-processor handoff.
	TopicOrderProcess = "shop.order.process"
	// TopicOrderCreated announces a newly placed order (ledger listener).
	TopicOrderCreated = "shop.order.created"
	// TopicOrderCompleted announces a fully paid and completed order.
	TopicOrderCompleted = "shop.order.completed"
	// TopicOrderPaymentFailed announces a failed payment capture.
	TopicOrderPaymentFailed = "shop.order.payment_failed"
)

// Aggregate type constant.
const AggregateTypeOrder = "order"

// Source identifier for events originating from this service.
const SourceShopAPI = "shop-api"

// OrderProcessData is the payload handed to the async order processor.
type OrderProcessData struct {
	OrderID    string `json:"order_id"`
	CartID     string `json:"cart_id"`
	TotalCents int64  `json:"total_cents"`
}

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	OrderID    string `json:"order_id"`
	CartID     string `json:"cart_id"`
	UserID     string `json:"user_id"`
	TotalCents int64  `json:"total_cents"`
}

// OrderCompletedData is the payload for an order.completed event.
type OrderCompletedData struct {
	OrderID          string `json:"order_id"`
	PaymentReference string `json:"payment_reference"`
	TotalCents       int64  `json:"total_cents"`
}

// OrderPaymentFailedData is the payload for an order.payment_failed event.
type OrderPaymentFailedData struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// Producer publishes order lifecycle events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderProcess hands a freshly placed order to the async processor.
func (p *Producer) PublishOrderProcess(ctx context.Context, order *domain.Order) error {
	data := OrderProcessData{
		OrderID:    order.ID.String(),
		CartID:     order.CartID.String(),
		TotalCents: order.Total.Cents(),
	}

	event, err := pkgkafka.NewEvent(TopicOrderProcess, order.ID.String(), AggregateTypeOrder, SourceShopAPI, data)
	if err != nil {
		return fmt.Errorf("create order.process event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderProcess, event); err != nil {
		return fmt.Errorf("publish order.process event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.process event",
		slog.String("order_id", order.ID.String()),
		slog.String("cart_id", order.CartID.String()),
	)

	return nil
}

// PublishOrderCreated announces the new order for the job ledger listener.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		OrderID:    order.ID.String(),
		CartID:     order.CartID.String(),
		UserID:     order.UserID.String(),
		TotalCents: order.Total.Cents(),
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID.String(), AggregateTypeOrder, SourceShopAPI, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	return nil
}

// PublishOrderCompleted announces a completed order.
func (p *Producer) PublishOrderCompleted(ctx context.Context, order *domain.Order) error {
	data := OrderCompletedData{
		OrderID:          order.ID.String(),
		PaymentReference: order.PaymentReference,
		TotalCents:       order.Total.Cents(),
	}

	event, err := pkgkafka.NewEvent(TopicOrderCompleted, order.ID.String(), AggregateTypeOrder, SourceShopAPI, data)
	if err != nil {
		return fmt.Errorf("create order.completed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCompleted, event); err != nil {
		return fmt.Errorf("publish order.completed event: %w", err)
	}

	return nil
}

// PublishOrderPaymentFailed announces a failed payment capture.
func (p *Producer) PublishOrderPaymentFailed(ctx context.Context, order *domain.Order, reason string) error {
	data := OrderPaymentFailedData{
		OrderID: order.ID.String(),
		Reason:  reason,
	}

	event, err := pkgkafka.NewEvent(TopicOrderPaymentFailed, order.ID.String(), AggregateTypeOrder, SourceShopAPI, data)
	if err != nil {
		return fmt.Errorf("create order.payment_failed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderPaymentFailed, event); err != nil {
		return fmt.Errorf("publish order.payment_failed event: %w", err)
	}

	return nil
}
