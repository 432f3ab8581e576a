package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Lopega12/sirorko-code-challenge/pkg/database"
)

// ProcessedEventStore implements kafka.IdempotencyStore on PostgreSQL so
// consumer deduplication survives restarts and works across replicas.
type ProcessedEventStore struct {
	pool database.DBTX
}

// NewProcessedEventStore creates a new PostgreSQL-backed idempotency store.
func NewProcessedEventStore(pool database.DBTX) *ProcessedEventStore {
	return &ProcessedEventStore{pool: pool}
}

// Contains reports whether the event ID has already been processed.
func (s *ProcessedEventStore) Contains(ctx context.Context, eventID string) (bool, error) {
	query := `SELECT 1 FROM processed_events WHERE event_id = $1`

	var one int
	err := s.pool.QueryRow(ctx, query, eventID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check processed event: %w", err)
	}

	return true, nil
}

// Add marks an event ID as processed. Concurrent consumers racing on the
// same event collapse onto the unique constraint.
func (s *ProcessedEventStore) Add(ctx context.Context, eventID string) error {
	query := `
		INSERT INTO processed_events (event_id, processed_at)
		VALUES ($1, $2)`

	_, err := s.pool.Exec(ctx, query, eventID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil
		}
		return fmt.Errorf("insert processed event: %w", err)
	}

	return nil
}
