package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
)

// OrderItem is a frozen snapshot of a cart line at checkout time. Later
// catalog or cart changes never affect an order that has been placed.
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice Money     `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	Subtotal  Money     `json:"subtotal"`
}

// Order is a placed order moving through the payment lifecycle.
type Order struct {
	ID               uuid.UUID   `json:"id"`
	CartID           uuid.UUID   `json:"cart_id"`
	UserID           uuid.UUID   `json:"user_id"`
	Status           OrderStatus `json:"status"`
	Total            Money       `json:"total"`
	PaymentReference string      `json:"payment_reference,omitempty"`
	Items            []OrderItem `json:"items"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// NewOrderFromCart freezes the given cart into a pending order. The cart
// must not be empty.
func NewOrderFromCart(cart *Cart) (*Order, error) {
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cannot create an order from an empty cart")
	}

	items := make([]OrderItem, 0, len(cart.Items))
	total := Zero()
	for _, line := range cart.Items {
		subtotal, err := line.Subtotal()
		if err != nil {
			return nil, err
		}
		items = append(items, OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}

	now := time.Now().UTC()
	return &Order{
		ID:        uuid.New(),
		CartID:    cart.ID,
		UserID:    cart.UserID,
		Status:    OrderStatusPending,
		Total:     total,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanBeProcessed reports whether the async processor may pick the order up.
func (o *Order) CanBeProcessed() bool {
	return o.Status == OrderStatusPending
}

// CanBeCancelled reports whether a customer may still cancel the order.
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPaymentFailed
}

// MarkProcessing transitions the order to processing.
func (o *Order) MarkProcessing() error {
	return o.transitionTo(OrderStatusProcessing)
}

// MarkPaid records the payment reference and transitions the order to paid.
func (o *Order) MarkPaid(paymentReference string) error {
	if paymentReference == "" {
		return apperrors.InvalidInput("payment reference is required")
	}
	if err := o.transitionTo(OrderStatusPaid); err != nil {
		return err
	}
	o.PaymentReference = paymentReference
	return nil
}

// MarkCompleted transitions the order to completed.
func (o *Order) MarkCompleted() error {
	return o.transitionTo(OrderStatusCompleted)
}

// MarkPaymentFailed transitions the order to payment_failed.
func (o *Order) MarkPaymentFailed() error {
	return o.transitionTo(OrderStatusPaymentFailed)
}

// Cancel transitions the order to cancelled. Only pending and payment_failed
// orders can be cancelled.
func (o *Order) Cancel() error {
	if !o.CanBeCancelled() {
		return apperrors.InvalidInput(fmt.Sprintf(
			"order in status %q cannot be cancelled", o.Status))
	}
	return o.transitionTo(OrderStatusCancelled)
}

func (o *Order) transitionTo(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return apperrors.InvalidInput(fmt.Sprintf(
			"invalid order status transition from %q to %q", o.Status, target))
	}
	o.Status = target
	o.UpdatedAt = time.Now().UTC()
	return nil
}
