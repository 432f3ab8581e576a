package domain

import (
	"encoding/json"
	"fmt"
	"math"

	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
)

// Money is a monetary amount in minor units (cents). All amounts in the
// system are USD and non-negative; construction rejects negative values so
// an invalid amount can never circulate.
type Money struct {
	cents int64
}

// NewMoney creates a Money from an amount in cents.
func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, apperrors.InvalidInput(fmt.Sprintf("money amount cannot be negative: %d", cents))
	}
	return Money{cents: cents}, nil
}

// MoneyFromFloat converts a major-unit amount (e.g. 19.99) to Money,
// rounding half away from zero to the nearest cent.
func MoneyFromFloat(amount float64) (Money, error) {
	return NewMoney(int64(math.Round(amount * 100)))
}

// Zero returns the zero amount.
func Zero() Money {
	return Money{}
}

// Cents returns the amount in minor units.
func (m Money) Cents() int64 {
	return m.cents
}

// Float returns the amount in major units. Only for display; arithmetic
// always happens on cents.
func (m Money) Float() float64 {
	return float64(m.cents) / 100
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// Multiply returns the amount multiplied by a positive quantity.
func (m Money) Multiply(qty int) (Money, error) {
	if qty <= 0 {
		return Money{}, apperrors.InvalidInput(fmt.Sprintf("multiplier must be positive: %d", qty))
	}
	return Money{cents: m.cents * int64(qty)}, nil
}

// Equals reports whether two amounts are the same.
func (m Money) Equals(other Money) bool {
	return m.cents == other.cents
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.cents == 0
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m.cents/100, m.cents%100)
}

// MarshalJSON encodes the amount as its integer cent value.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.cents)
}

// UnmarshalJSON decodes an integer cent value, rejecting negatives.
func (m *Money) UnmarshalJSON(data []byte) error {
	var cents int64
	if err := json.Unmarshal(data, &cents); err != nil {
		return err
	}
	v, err := NewMoney(cents)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
