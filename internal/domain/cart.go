package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
)

// CartItem is a single product line in a cart. The unit price is resolved
// from the catalog when the item is added and kept with the line so the cart
// total does not drift with later price changes.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice Money     `json:"unit_price"`
	Quantity  int       `json:"quantity"`
}

// Subtotal returns the line total (unit price times quantity).
func (i CartItem) Subtotal() (Money, error) {
	return i.UnitPrice.Multiply(i.Quantity)
}

// Cart is a user's shopping cart. One cart per user; items merge by product.
type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart creates an empty cart for the given user.
func NewCart(userID uuid.UUID) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:        uuid.New(),
		UserID:    userID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem adds a product line to the cart. If the product is already in the
// cart the quantities are summed rather than creating a duplicate line.
func (c *Cart) AddItem(item CartItem) error {
	if item.Quantity <= 0 {
		return apperrors.InvalidInput("quantity must be positive")
	}

	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			c.touch()
			return nil
		}
	}

	c.Items = append(c.Items, item)
	c.touch()
	return nil
}

// UpdateItemQuantity sets the quantity of an existing line. A quantity of
// zero or less removes the line entirely.
func (c *Cart) UpdateItemQuantity(productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(productID)
	}

	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			c.touch()
			return nil
		}
	}

	return apperrors.NotFound("cart item", productID.String())
}

// RemoveItem deletes a line from the cart.
func (c *Cart) RemoveItem(productID uuid.UUID) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.touch()
			return nil
		}
	}

	return apperrors.NotFound("cart item", productID.String())
}

// Item returns the line for the given product, if present.
func (c *Cart) Item(productID uuid.UUID) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// Total sums the subtotals of all lines.
func (c *Cart) Total() (Money, error) {
	total := Zero()
	for _, item := range c.Items {
		sub, err := item.Subtotal()
		if err != nil {
			return Zero(), err
		}
		total = total.Add(sub)
	}
	return total, nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clear removes all lines. Checkout calls this once the order snapshot is
// durable so a stale cart cannot produce a second order.
func (c *Cart) Clear() {
	c.Items = nil
	c.touch()
}

// ItemCount returns the total number of units across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
