package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Lopega12/sirorko-code-challenge/internal/domain"
	"github.com/Lopega12/sirorko-code-challenge/internal/payment"
	"github.com/Lopega12/sirorko-code-challenge/internal/service"
	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
	"github.com/Lopega12/sirorko-code-challenge/pkg/middleware"
)

type orderTestEnv struct {
	router *chi.Mux
	orders *mockOrderRepository
	jobs   *mockOrderJobRepository
}

func setupOrderRouter(t *testing.T) orderTestEnv {
	t.Helper()

	env := orderTestEnv{
		orders: new(mockOrderRepository),
		jobs:   new(mockOrderJobRepository),
	}

	provider := payment.NewSimulatedProvider(0, 0)
	orderService := service.NewOrderService(env.orders, env.jobs, provider, testEventProducer(), testLogger())
	handler := NewOrderHandler(orderService, testLogger())

	validate := func(_ context.Context, token string) (*middleware.Claims, error) {
		if token != testBearerToken {
			return nil, apperrors.Unauthorized("invalid token")
		}
		return &middleware.Claims{UserID: uuid.New().String()}, nil
	}

	r := chi.NewRouter()
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(validate))

		r.Get("/{orderID}", handler.GetOrder)
		r.Post("/{orderID}/cancel", handler.CancelOrder)
	})
	env.router = r
	return env
}

func placedOrder(t *testing.T) *domain.Order {
	t.Helper()
	cart := domain.NewCart(uuid.New())
	price, _ := domain.NewMoney(1999)
	require.NoError(t, cart.AddItem(domain.CartItem{
		ProductID: uuid.New(),
		Name:      "Camiseta Azul",
		UnitPrice: price,
		Quantity:  2,
	}))
	order, err := domain.NewOrderFromCart(cart)
	require.NoError(t, err)
	return order
}

func (env orderTestEnv) get(t *testing.T, path string, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+testBearerToken)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestOrderHandler_GetOrder(t *testing.T) {
	env := setupOrderRouter(t)
	order := placedOrder(t)

	env.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	rec := env.get(t, "/api/orders/"+order.ID.String(), true)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data OrderResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, order.ID.String(), body.Data.ID)
	assert.Equal(t, "pending", body.Data.Status)
	assert.Equal(t, "Pedido pendiente de procesamiento", body.Data.StatusDescription)
	assert.Equal(t, int64(3998), body.Data.Total)
	require.Len(t, body.Data.Items, 1)
	assert.Equal(t, int64(3998), body.Data.Items[0].Subtotal)
}

func TestOrderHandler_GetOrder_Unauthenticated(t *testing.T) {
	env := setupOrderRouter(t)

	rec := env.get(t, "/api/orders/"+uuid.New().String(), false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderHandler_GetOrder_NotFound(t *testing.T) {
	env := setupOrderRouter(t)
	orderID := uuid.New()

	env.orders.On("GetByID", mock.Anything, orderID).
		Return(nil, apperrors.NotFound("order", orderID.String()))

	rec := env.get(t, "/api/orders/"+orderID.String(), true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderHandler_GetOrder_MalformedID(t *testing.T) {
	env := setupOrderRouter(t)

	rec := env.get(t, "/api/orders/not-a-uuid", true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderHandler_CancelOrder(t *testing.T) {
	env := setupOrderRouter(t)
	order := placedOrder(t)

	env.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	env.orders.On("Update", mock.Anything, order).Return(nil)

	rec := doJSON(t, env.router, http.MethodPost, "/api/orders/"+order.ID.String()+"/cancel", nil, map[string]string{
		"Authorization": "Bearer " + testBearerToken,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Order cancelled successfully")
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
}

func TestOrderHandler_CancelOrder_InvalidState(t *testing.T) {
	env := setupOrderRouter(t)
	order := placedOrder(t)
	require.NoError(t, order.MarkProcessing())

	env.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	rec := doJSON(t, env.router, http.MethodPost, "/api/orders/"+order.ID.String()+"/cancel", nil, map[string]string{
		"Authorization": "Bearer " + testBearerToken,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
