package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Lopega12/sirorko-code-challenge/internal/domain"
	"github.com/Lopega12/sirorko-code-challenge/internal/event"
	"github.com/Lopega12/sirorko-code-challenge/internal/payment"
	"github.com/Lopega12/sirorko-code-challenge/internal/repository"
	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
)

// OrderService implements order reads, cancellation, and the async
// processing step driven by the Kafka consumer.
type OrderService struct {
	orders   repository.OrderRepository
	jobs     repository.OrderJobRepository
	provider payment.Provider
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	jobs repository.OrderJobRepository,
	provider payment.Provider,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		jobs:     jobs,
		provider: provider,
		producer: producer,
		logger:   logger,
	}
}

// GetOrder fetches an order with its item snapshot.
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

// CancelOrder cancels an order if its status allows it.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := order.Cancel(); err != nil {
		return err
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return fmt.Errorf("persist cancelled order: %w", err)
	}

	s.logger.InfoContext(ctx, "order cancelled",
		slog.String("order_id", orderID.String()),
	)

	return nil
}

// ProcessOrder is the async payment step. It is idempotent: an order that is
// no longer pending (already processed, or a redelivered message) is
// acknowledged without side effects. Only infrastructure errors are returned
// to the consumer for retry.
func (s *OrderService) ProcessOrder(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "order to process not found, skipping",
				slog.String("order_id", orderID.String()),
			)
			return nil
		}
		return fmt.Errorf("load order: %w", err)
	}

	if !order.CanBeProcessed() {
		s.logger.InfoContext(ctx, "order not in a processable status, skipping",
			slog.String("order_id", orderID.String()),
			slog.String("status", string(order.Status)),
		)
		return nil
	}

	// The order snapshot is frozen at checkout; an empty one indicates a
	// corrupt row rather than a transient condition, so it is not retried.
	if len(order.Items) == 0 {
		s.logger.ErrorContext(ctx, "order has an empty item snapshot, skipping",
			slog.String("order_id", orderID.String()),
		)
		return nil
	}

	if err := order.MarkProcessing(); err != nil {
		return err
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return fmt.Errorf("persist processing order: %w", err)
	}

	ref, chargeErr := s.provider.Charge(ctx, order)
	if chargeErr != nil {
		return s.failPayment(ctx, order, chargeErr)
	}

	if err := order.MarkPaid(ref); err != nil {
		return err
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return fmt.Errorf("persist paid order: %w", err)
	}

	if err := order.MarkCompleted(); err != nil {
		return err
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return fmt.Errorf("persist completed order: %w", err)
	}

	s.updateJob(ctx, order.ID, repository.OrderJobDone)

	if err := s.producer.PublishOrderCompleted(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.completed event",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order processed",
		slog.String("order_id", order.ID.String()),
		slog.String("payment_reference", ref),
	)

	return nil
}

// failPayment records the failed capture and propagates the original error
// so the consumer's retry and dead-letter machinery see it.
func (s *OrderService) failPayment(ctx context.Context, order *domain.Order, chargeErr error) error {
	s.logger.WarnContext(ctx, "payment capture failed",
		slog.String("order_id", order.ID.String()),
		slog.String("error", chargeErr.Error()),
	)

	if err := order.MarkPaymentFailed(); err != nil {
		return err
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return fmt.Errorf("persist payment_failed order: %w", err)
	}

	s.updateJob(ctx, order.ID, repository.OrderJobFailed)

	if err := s.producer.PublishOrderPaymentFailed(ctx, order, chargeErr.Error()); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.payment_failed event",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	return chargeErr
}

// updateJob moves the ledger row; a missing row is logged, not fatal.
func (s *OrderService) updateJob(ctx context.Context, orderID uuid.UUID, status string) {
	if err := s.jobs.UpdateStatus(ctx, orderID, status); err != nil {
		s.logger.WarnContext(ctx, "failed to update order job ledger",
			slog.String("order_id", orderID.String()),
			slog.String("status", status),
			slog.String("error", err.Error()),
		)
	}
}
