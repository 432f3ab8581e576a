package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Lopega12/sirorko-code-challenge/internal/domain"
	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
)

func newTestResolver(t *testing.T) (*CartResolver, cartServiceMocks) {
	t.Helper()
	cartSvc, m := newTestCartService(t)
	return NewCartResolver(m.carts, cartSvc), m
}

func TestCartResolver_SentinelResolvesOwnCart(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	existing := domain.NewCart(userID)

	for _, ref := range []string{CartRefMe, CartRefCurrent, ""} {
		resolver, m := newTestResolver(t)
		m.carts.On("GetByUser", ctx, userID).Return(existing, nil)

		cart, err := resolver.Resolve(ctx, ref, userID)

		require.NoError(t, err, "ref %q", ref)
		assert.Equal(t, existing.ID, cart.ID)
	}
}

func TestCartResolver_SentinelRequiresAuth(t *testing.T) {
	resolver, _ := newTestResolver(t)

	_, err := resolver.Resolve(context.Background(), CartRefMe, uuid.Nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestCartResolver_ExplicitID(t *testing.T) {
	resolver, m := newTestResolver(t)
	ctx := context.Background()
	cart := domain.NewCart(uuid.New())

	m.carts.On("Get", ctx, cart.ID).Return(cart, nil)

	got, err := resolver.Resolve(ctx, cart.ID.String(), cart.UserID)

	require.NoError(t, err)
	assert.Equal(t, cart.ID, got.ID)
}

// Explicit IDs are checked in a fixed order: format, existence,
// authentication, ownership.

func TestCartResolver_MalformedIDBeatsEverything(t *testing.T) {
	resolver, m := newTestResolver(t)

	// Even without authentication a malformed reference is invalid input.
	_, err := resolver.Resolve(context.Background(), "not-a-uuid", uuid.Nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	m.carts.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCartResolver_MissingCartBeatsAuth(t *testing.T) {
	resolver, m := newTestResolver(t)
	ctx := context.Background()
	cartID := uuid.New()

	m.carts.On("Get", ctx, cartID).Return(nil, apperrors.NotFound("cart", cartID.String()))

	// Unauthenticated caller still learns the cart does not exist.
	_, err := resolver.Resolve(ctx, cartID.String(), uuid.Nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartResolver_AuthBeatsOwnership(t *testing.T) {
	resolver, m := newTestResolver(t)
	ctx := context.Background()
	cart := domain.NewCart(uuid.New())

	m.carts.On("Get", ctx, cart.ID).Return(cart, nil)

	_, err := resolver.Resolve(ctx, cart.ID.String(), uuid.Nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestCartResolver_ForeignCartIsForbidden(t *testing.T) {
	resolver, m := newTestResolver(t)
	ctx := context.Background()
	cart := domain.NewCart(uuid.New())

	m.carts.On("Get", ctx, cart.ID).Return(cart, nil)

	_, err := resolver.Resolve(ctx, cart.ID.String(), uuid.New())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
