package domain

import (
	"fmt"

	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "pending"
	OrderStatusProcessing    OrderStatus = "processing"
	OrderStatusPaid          OrderStatus = "paid"
	OrderStatusCompleted     OrderStatus = "completed"
	OrderStatusPaymentFailed OrderStatus = "payment_failed"
	OrderStatusCancelled     OrderStatus = "cancelled"
)

// allowedTransitions defines the order status state machine. Terminal states
// (completed, cancelled) have no outgoing transitions.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:       {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing:    {OrderStatusPaid, OrderStatusPaymentFailed},
	OrderStatusPaid:          {OrderStatusCompleted},
	OrderStatusPaymentFailed: {OrderStatusCancelled},
}

// CanTransitionTo reports whether the state machine allows moving from the
// current status to the target.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsValid reports whether the value is a known status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusPaid,
		OrderStatusCompleted, OrderStatusPaymentFailed, OrderStatusCancelled:
		return true
	}
	return false
}

// Description returns the human-readable description shown to customers.
func (s OrderStatus) Description() string {
	switch s {
	case OrderStatusPending:
		return "Pedido pendiente de procesamiento"
	case OrderStatusProcessing:
		return "Procesando pago"
	case OrderStatusPaid:
		return "Pago completado"
	case OrderStatusPaymentFailed:
		return "Fallo en el pago"
	case OrderStatusCompleted:
		return "Pedido completado"
	case OrderStatusCancelled:
		return "Pedido cancelado"
	}
	return string(s)
}

// ParseOrderStatus converts a stored string into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !status.IsValid() {
		return "", apperrors.InvalidInput(fmt.Sprintf("unknown order status: %q", s))
	}
	return status, nil
}
