package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Lopega12/sirorko-code-challenge/internal/domain"
	"github.com/Lopega12/sirorko-code-challenge/internal/repository"
	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
)

// Sentinel cart references meaning "the caller's own cart".
const (
	CartRefMe      = "me"
	CartRefCurrent = "current"
)

// CartResolver turns a cart path reference into the caller's cart, enforcing
// a strict check order for explicit IDs: format, existence, authentication,
// ownership. The order is observable through status codes and is relied on
// by clients (e.g. a malformed ID is always 400, even unauthenticated).
type CartResolver struct {
	carts repository.CartRepository
	cart  *CartService
}

// NewCartResolver creates a resolver backed by the given repository and
// cart service (used to lazily create the implicit cart).
func NewCartResolver(carts repository.CartRepository, cart *CartService) *CartResolver {
	return &CartResolver{
		carts: carts,
		cart:  cart,
	}
}

// Resolve returns the cart referenced by ref. userID is uuid.Nil when the
// request carries no valid authentication.
func (r *CartResolver) Resolve(ctx context.Context, ref string, userID uuid.UUID) (*domain.Cart, error) {
	if ref == "" || ref == CartRefMe || ref == CartRefCurrent {
		if userID == uuid.Nil {
			return nil, apperrors.Unauthorized("authentication required")
		}
		return r.cart.GetOrCreateCart(ctx, userID)
	}

	// 1. Format.
	cartID, err := uuid.Parse(ref)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid cart id: %q", ref))
	}

	// 2. Existence.
	cart, err := r.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	// 3. Authentication.
	if userID == uuid.Nil {
		return nil, apperrors.Unauthorized("authentication required")
	}

	// 4. Ownership.
	if cart.UserID != userID {
		return nil, apperrors.Forbidden("cart belongs to another user")
	}

	return cart, nil
}
