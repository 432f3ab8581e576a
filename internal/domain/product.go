package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry. Cart lines resolve their name and unit price
// from the catalog at the moment the item is added.
type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	SKU       string    `json:"sku"`
	Price     Money     `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
