package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
)

// ============================================================================
// Construction
// ============================================================================

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(1999)
	require.NoError(t, err)
	assert.Equal(t, int64(1999), m.Cents())
}

func TestNewMoney_Zero(t *testing.T) {
	m, err := NewMoney(0)
	require.NoError(t, err)
	assert.True(t, m.IsZero())
}

func TestNewMoney_Negative(t *testing.T) {
	_, err := NewMoney(-1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestMoneyFromFloat(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   int64
	}{
		{"exact cents", 19.99, 1999},
		{"whole amount", 20.0, 2000},
		{"rounds up", 10.005, 1001},
		{"rounds down", 10.004, 1000},
		{"zero", 0.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := MoneyFromFloat(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Cents())
		})
	}
}

func TestMoneyFromFloat_Negative(t *testing.T) {
	_, err := MoneyFromFloat(-0.01)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// ============================================================================
// Arithmetic
// ============================================================================

func TestMoney_Add(t *testing.T) {
	a, _ := NewMoney(1000)
	b, _ := NewMoney(550)
	assert.Equal(t, int64(1550), a.Add(b).Cents())
}

func TestMoney_Multiply(t *testing.T) {
	m, _ := NewMoney(1999)

	got, err := m.Multiply(3)
	require.NoError(t, err)
	assert.Equal(t, int64(5997), got.Cents())
}

func TestMoney_Multiply_NonPositive(t *testing.T) {
	m, _ := NewMoney(1999)

	for _, qty := range []int{0, -1} {
		_, err := m.Multiply(qty)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
}

func TestMoney_Equals(t *testing.T) {
	a, _ := NewMoney(100)
	b, _ := NewMoney(100)
	c, _ := NewMoney(101)

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestMoney_Float(t *testing.T) {
	m, _ := NewMoney(1999)
	assert.InDelta(t, 19.99, m.Float(), 0.0001)
}

func TestMoney_String(t *testing.T) {
	m, _ := NewMoney(1905)
	assert.Equal(t, "19.05", m.String())
}

// ============================================================================
// JSON
// ============================================================================

func TestMoney_MarshalJSON(t *testing.T) {
	m, _ := NewMoney(1999)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, "1999", string(data))
}

func TestMoney_UnmarshalJSON(t *testing.T) {
	var m Money
	require.NoError(t, json.Unmarshal([]byte("1999"), &m))
	assert.Equal(t, int64(1999), m.Cents())
}

func TestMoney_UnmarshalJSON_Negative(t *testing.T) {
	var m Money
	err := json.Unmarshal([]byte("-5"), &m)
	require.Error(t, err)
}
