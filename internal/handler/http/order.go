package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Lopega12/sirorko-code-challenge/internal/domain"
	"github.com/Lopega12/sirorko-code-challenge/internal/service"
	"github.com/Lopega12/sirorko-code-challenge/pkg/httputil"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{service: svc, logger: logger}
}

// --- Response types ---

// OrderItemResponse is one frozen order line in API responses.
type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// OrderResponse is the API view of an order.
type OrderResponse struct {
	ID                string              `json:"id"`
	CartID            string              `json:"cart_id"`
	Status            string              `json:"status"`
	StatusDescription string              `json:"status_description"`
	Total             int64               `json:"total"`
	PaymentReference  string              `json:"payment_reference,omitempty"`
	Items             []OrderItemResponse `json:"items"`
	CreatedAt         time.Time           `json:"created_at"`
}

func newOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, OrderItemResponse{
			ProductID: line.ProductID.String(),
			Name:      line.Name,
			UnitPrice: line.UnitPrice.Cents(),
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal.Cents(),
		})
	}

	return OrderResponse{
		ID:                order.ID.String(),
		CartID:            order.CartID.String(),
		Status:            string(order.Status),
		StatusDescription: order.Status.Description(),
		Total:             order.Total.Cents(),
		PaymentReference:  order.PaymentReference,
		Items:             items,
		CreatedAt:         order.CreatedAt,
	}
}

// --- Handlers ---

// GetOrder handles GET /api/orders/{orderID}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := httputil.ParseUUID(w, chi.URLParam(r, "orderID"))
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newOrderResponse(order)})
}

// CancelOrder handles POST /api/orders/{orderID}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := httputil.ParseUUID(w, chi.URLParam(r, "orderID"))
	if !ok {
		return
	}

	if err := h.service.CancelOrder(r.Context(), orderID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"message": "Order cancelled successfully",
	}})
}
