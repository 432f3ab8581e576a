// Command seed populates the catalog with a deterministic set of demo
// products. Re-runs are idempotent: product IDs derive from the item index,
// and already-seeded rows are skipped.
package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	mrand "math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"

	appconfig "github.com/Lopega12/sirorko-code-challenge/internal/config"
	"github.com/Lopega12/sirorko-code-challenge/internal/domain"
	"github.com/Lopega12/sirorko-code-challenge/internal/repository/postgres"
	"github.com/Lopega12/sirorko-code-challenge/migrations"
	"github.com/Lopega12/sirorko-code-challenge/pkg/database"
	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
	"github.com/Lopega12/sirorko-code-challenge/pkg/logger"
	"github.com/Lopega12/sirorko-code-challenge/pkg/slug"
)

const totalProducts = 500

var adjectives = []string{
	"Azul", "Roja", "Verde", "Negra", "Blanca", "Clásica", "Moderna", "Ligera", "Premium", "Básica",
}

var nouns = []string{
	"Camiseta", "Sudadera", "Chaqueta", "Pantalón", "Falda", "Vestido", "Gorra", "Bufanda", "Camisa", "Abrigo",
}

// deterministicUUID produces a stable ID from the item index so re-runs
// always target the same rows.
func deterministicUUID(index int) uuid.UUID {
	h := sha256.Sum256([]byte(fmt.Sprintf("shop-product:%d", index)))
	id, _ := uuid.FromBytes(h[:16])
	return id
}

func main() {
	if err := run(); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New("shop-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPoolWithLogger(ctx, cfg.Postgres(), log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	repo := postgres.NewProductRepository(pool)
	rng := mrand.New(mrand.NewPCG(42, 0))

	created, skipped := 0, 0
	for i := 0; i < totalProducts; i++ {
		name := fmt.Sprintf("%s %s %d",
			nouns[i%len(nouns)],
			adjectives[(i/len(nouns))%len(adjectives)],
			i+1,
		)

		price, err := domain.NewMoney(int64(500 + rng.IntN(19500)))
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		product := &domain.Product{
			ID:        deterministicUUID(i),
			Name:      name,
			Slug:      slug.Generate(name),
			SKU:       fmt.Sprintf("SHOP-%05d", i+1),
			Price:     price,
			Stock:     10 + rng.IntN(90),
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := repo.Create(ctx, product); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyExists) {
				skipped++
				continue
			}
			return fmt.Errorf("create product %q: %w", product.SKU, err)
		}
		created++
	}

	log.Info("catalog seeded",
		slog.Int("created", created),
		slog.Int("skipped", skipped),
	)
	return nil
}
