package payments

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountInCents(t *testing.T) {
	cents, err := AmountInCents(49.99)
	require.NoError(t, err)
	assert.Equal(t, int64(4999), cents)

	cents, err = AmountInCents(0.1 + 0.2)
	require.NoError(t, err)
	assert.Equal(t, int64(30), cents)

	for _, bad := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		_, err := AmountInCents(bad)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	}
}

func TestUnconfiguredStripe(t *testing.T) {
	s := NewStripeService("")
	assert.Nil(t, s)
	_, err := s.CreateIntent(context.Background(), 10)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
