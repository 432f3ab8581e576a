package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Lopega12/sirorko-code-challenge/internal/domain"
	"github.com/Lopega12/sirorko-code-challenge/internal/service"
	"github.com/Lopega12/sirorko-code-challenge/pkg/httputil"
	"github.com/Lopega12/sirorko-code-challenge/pkg/middleware"
	"github.com/Lopega12/sirorko-code-challenge/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints. Every route accepts
// an optional cart reference path segment; the resolver maps it (or its
// absence) to the caller's cart.
type CartHandler struct {
	resolver *service.CartResolver
	service  *service.CartService
	logger   *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(resolver *service.CartResolver, svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		resolver: resolver,
		service:  svc,
		logger:   logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateItemRequest is the JSON request body for setting a line quantity.
// Zero and negative values remove the line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// --- Response types ---

// CartItemResponse is one cart line in API responses.
type CartItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// CartResponse is the API view of a cart.
type CartResponse struct {
	ID    string             `json:"id"`
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
}

func newCartResponse(cart *domain.Cart) (CartResponse, error) {
	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, line := range cart.Items {
		subtotal, err := line.Subtotal()
		if err != nil {
			return CartResponse{}, err
		}
		items = append(items, CartItemResponse{
			ProductID: line.ProductID.String(),
			Name:      line.Name,
			UnitPrice: line.UnitPrice.Cents(),
			Quantity:  line.Quantity,
			Subtotal:  subtotal.Cents(),
		})
	}

	total, err := cart.Total()
	if err != nil {
		return CartResponse{}, err
	}

	return CartResponse{
		ID:    cart.ID.String(),
		Items: items,
		Total: total.Cents(),
	}, nil
}

// resolveCart maps the request's cart reference and identity to a cart,
// writing the error response itself on failure.
func (h *CartHandler) resolveCart(w http.ResponseWriter, r *http.Request) (*domain.Cart, bool) {
	ref := chi.URLParam(r, "cartRef")

	userID := uuid.Nil
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err == nil {
			userID = parsed
		}
	}

	cart, err := h.resolver.Resolve(r.Context(), ref, userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}
	return cart, true
}

// --- Handlers ---

// GetCart handles GET /cart/ and GET /cart/{cartRef}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.resolveCart(w, r)
	if !ok {
		return
	}

	resp, err := newCartResponse(cart)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resp})
}

// AddItem handles POST /cart/items and POST /cart/{cartRef}/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, ok := h.resolveCart(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid product id"},
		})
		return
	}

	if err := h.service.AddItem(r.Context(), cart, productID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: map[string]string{"status": "ok"}})
}

// UpdateItem handles PUT|PATCH /cart/items/{productID}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productID"))
	if !ok {
		return
	}

	cart, ok := h.resolveCart(w, r)
	if !ok {
		return
	}

	if err := h.service.UpdateItemQuantity(r.Context(), cart, productID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "ok"}})
}

// RemoveItem handles DELETE /cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productID"))
	if !ok {
		return
	}

	cart, ok := h.resolveCart(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveItem(r.Context(), cart, productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Checkout handles POST /cart/checkout and POST /cart/{cartRef}/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.resolveCart(w, r)
	if !ok {
		return
	}

	order, err := h.service.Checkout(r.Context(), cart)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"order_id": order.ID.String(),
	}})
}
