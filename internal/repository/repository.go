package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Lopega12/sirorko-code-challenge/internal/domain"
)

// CartRepository stores carts. Implementations must return
// apperrors.ErrNotFound when a cart does not exist.
type CartRepository interface {
	// Get fetches a cart by its ID.
	Get(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error)
	// GetByUser fetches the cart owned by the given user.
	GetByUser(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	// Save persists the cart and the user-to-cart index.
	Save(ctx context.Context, cart *domain.Cart) error
	// Delete removes the cart and its index entry.
	Delete(ctx context.Context, cartID uuid.UUID) error
}

// OrderRepository stores orders and their item snapshots.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	// Update persists the order's status, payment reference, and updated_at.
	Update(ctx context.Context, order *domain.Order) error
}

// UserRepository stores customer accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// ProductRepository reads the catalog.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]domain.Product, int, error)
}

// OrderJob is a reconciliation ledger row tracking the async processing of
// one order.
type OrderJob struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order job statuses.
const (
	OrderJobPending = "pending"
	OrderJobDone    = "done"
	OrderJobFailed  = "failed"
)

// OrderJobRepository stores the order processing ledger.
type OrderJobRepository interface {
	Create(ctx context.Context, job *OrderJob) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*OrderJob, error)
}

// TokenStore records revoked JWT IDs until their natural expiry.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
