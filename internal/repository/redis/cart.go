package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Lopega12/sirorko-code-challenge/internal/domain"
	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
)

const (
	cartKeyPrefix      = "cart:"
	cartUserKeyPrefix  = "cart:user:"
)

// CartRepository implements repository.CartRepository using Redis. Carts are
// stored as JSON under cart:{cartID}, with a cart:user:{userID} index
// pointing at the user's cart so both lookups are a single key read.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed cart repository. Carts expire
// after the given TTL of inactivity; every Save refreshes it.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cart by its ID.
func (r *CartRepository) Get(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error) {
	return r.getByKey(ctx, cartKeyPrefix+cartID.String(), cartID.String())
}

// GetByUser retrieves the cart owned by the given user via the index key.
func (r *CartRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	cartID, err := r.client.Get(ctx, cartUserKeyPrefix+userID.String()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("cart", userID.String())
		}
		return nil, fmt.Errorf("redis get cart index: %w", err)
	}

	return r.getByKey(ctx, cartKeyPrefix+cartID, cartID)
}

func (r *CartRepository) getByKey(ctx context.Context, key, id string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("cart", id)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	return &cart, nil
}

// Save persists the cart and its user index with the configured TTL.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, cartKeyPrefix+cart.ID.String(), data, r.ttl)
	pipe.Set(ctx, cartUserKeyPrefix+cart.UserID.String(), cart.ID.String(), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Delete removes the cart and its index entry.
func (r *CartRepository) Delete(ctx context.Context, cartID uuid.UUID) error {
	cart, err := r.Get(ctx, cartID)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, cartKeyPrefix+cartID.String())
	pipe.Del(ctx, cartUserKeyPrefix+cart.UserID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}

	return nil
}
