package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Lopega12/sirorko-code-challenge/internal/repository"
	"github.com/Lopega12/sirorko-code-challenge/pkg/database"
	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
)

// OrderJobRepository implements repository.OrderJobRepository using
// PostgreSQL. Rows are the reconciliation ledger for async order processing.
type OrderJobRepository struct {
	pool database.DBTX
}

// NewOrderJobRepository creates a new PostgreSQL-backed order job repository.
func NewOrderJobRepository(pool database.DBTX) *OrderJobRepository {
	return &OrderJobRepository{pool: pool}
}

// Create inserts a ledger row. Replayed order.created events hit the unique
// order_id constraint and are treated as a no-op.
func (r *OrderJobRepository) Create(ctx context.Context, job *repository.OrderJob) error {
	query := `
		INSERT INTO order_jobs (id, order_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, job.ID, job.OrderID, job.Status, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil
		}
		return fmt.Errorf("insert order job: %w", err)
	}

	return nil
}

// UpdateStatus moves the ledger row for the given order to a new status.
func (r *OrderJobRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	query := `
		UPDATE order_jobs
		SET status = $1, updated_at = $2
		WHERE order_id = $3`

	ct, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), orderID)
	if err != nil {
		return fmt.Errorf("update order job: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order job", orderID.String())
	}

	return nil
}

// GetByOrderID fetches the ledger row for an order.
func (r *OrderJobRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*repository.OrderJob, error) {
	query := `
		SELECT id, order_id, status, created_at, updated_at
		FROM order_jobs
		WHERE order_id = $1`

	var job repository.OrderJob
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&job.ID, &job.OrderID, &job.Status, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order job", orderID.String())
		}
		return nil, fmt.Errorf("scan order job: %w", err)
	}

	return &job, nil
}
