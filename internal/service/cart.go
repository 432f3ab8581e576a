package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Lopega12/sirorko-code-challenge/internal/domain"
	"github.com/Lopega12/sirorko-code-challenge/internal/event"
	"github.com/Lopega12/sirorko-code-challenge/internal/repository"
	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
)

// Cart limits.
const (
	MaxQuantityPerItem = 100
	MaxItemsPerCart    = 50
)

// CartService implements cart operations and checkout.
type CartService struct {
	carts    repository.CartRepository
	orders   repository.OrderRepository
	products repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	carts repository.CartRepository,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		carts:    carts,
		orders:   orders,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// GetOrCreateCart returns the user's cart, creating an empty one on first use.
func (s *CartService) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	cart = domain.NewCart(userID)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save new cart: %w", err)
	}

	s.logger.InfoContext(ctx, "created cart",
		slog.String("cart_id", cart.ID.String()),
		slog.String("user_id", userID.String()),
	)

	return cart, nil
}

// AddItem resolves the product from the catalog and adds it to the cart,
// merging quantities when the product is already present.
func (s *CartService) AddItem(ctx context.Context, cart *domain.Cart, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperrors.InvalidInput("quantity must be positive")
	}
	if quantity > MaxQuantityPerItem {
		return apperrors.InvalidInput(fmt.Sprintf("quantity exceeds maximum of %d per item", MaxQuantityPerItem))
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	if existing, ok := cart.Item(productID); ok {
		if existing.Quantity+quantity > MaxQuantityPerItem {
			return apperrors.InvalidInput(fmt.Sprintf("quantity exceeds maximum of %d per item", MaxQuantityPerItem))
		}
	} else if len(cart.Items) >= MaxItemsPerCart {
		return apperrors.InvalidInput(fmt.Sprintf("cart cannot hold more than %d distinct products", MaxItemsPerCart))
	}

	if err := cart.AddItem(domain.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  quantity,
	}); err != nil {
		return err
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	return nil
}

// UpdateItemQuantity sets the quantity of a line; zero or less removes it.
func (s *CartService) UpdateItemQuantity(ctx context.Context, cart *domain.Cart, productID uuid.UUID, quantity int) error {
	if quantity > MaxQuantityPerItem {
		return apperrors.InvalidInput(fmt.Sprintf("quantity exceeds maximum of %d per item", MaxQuantityPerItem))
	}

	if err := cart.UpdateItemQuantity(productID, quantity); err != nil {
		return err
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	return nil
}

// RemoveItem removes a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, cart *domain.Cart, productID uuid.UUID) error {
	if err := cart.RemoveItem(productID); err != nil {
		return err
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	return nil
}

// Checkout freezes the cart into a pending order, persists it, hands it to
// the async processor via Kafka, and empties the cart so stale state cannot
// produce a second order.
func (s *CartService) Checkout(ctx context.Context, cart *domain.Cart) (*domain.Order, error) {
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cannot checkout an empty cart")
	}

	order, err := domain.NewOrderFromCart(cart)
	if err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The order is durable at this point; event publish failures are logged
	// but do not fail the checkout. The order job ledger picks up stragglers.
	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()),
		)
	}
	if err := s.producer.PublishOrderProcess(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.process event",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	// The order snapshot is frozen, so the cart can be emptied. A save
	// failure here leaves a stale cart but never a lost order.
	cart.Clear()
	if err := s.carts.Save(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("cart_id", cart.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("order_id", order.ID.String()),
		slog.String("cart_id", cart.ID.String()),
		slog.Int64("total_cents", order.Total.Cents()),
	)

	return order, nil
}
