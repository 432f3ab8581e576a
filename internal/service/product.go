package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Lopega12/sirorko-code-challenge/internal/domain"
	"github.com/Lopega12/sirorko-code-challenge/internal/repository"
)

// ProductService implements catalog reads.
type ProductService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(products repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		products: products,
		logger:   logger,
	}
}

// GetProduct fetches a single catalog entry.
func (s *ProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	return s.products.GetByID(ctx, productID)
}

// ListProducts returns one page of the catalog plus the total count.
func (s *ProductService) ListProducts(ctx context.Context, limit, offset int) ([]domain.Product, int, error) {
	return s.products.List(ctx, limit, offset)
}
