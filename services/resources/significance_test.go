package resources

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackMlog10p(t *testing.T) {
	twoSided := func(z float64) float64 {
		// 2 * (1 - Phi(z)) == erfc(z / sqrt 2)
		return -math.Log10(math.Erfc(z / math.Sqrt2))
	}

	t.Run("beta 2 se 1", func(t *testing.T) {
		got, ok := FallbackMlog10p(2.0, 1.0)
		assert.True(t, ok)
		assert.InDelta(t, twoSided(2.0), got, 1e-9)
		assert.InDelta(t, 1.3419, got, 1e-4)
	})

	t.Run("sign of beta does not matter", func(t *testing.T) {
		pos, _ := FallbackMlog10p(0.37, 0.1)
		neg, _ := FallbackMlog10p(-0.37, 0.1)
		assert.Equal(t, pos, neg)
		assert.InDelta(t, twoSided(3.7), pos, 1e-9)
	})

	t.Run("zero effect is not significant", func(t *testing.T) {
		got, ok := FallbackMlog10p(0, 1)
		assert.True(t, ok)
		assert.InDelta(t, 0, got, 1e-12)
	})

	t.Run("extreme z stays finite and monotone", func(t *testing.T) {
		a, ok := FallbackMlog10p(40, 1)
		assert.True(t, ok)
		b, _ := FallbackMlog10p(60, 1)
		assert.False(t, math.IsInf(a, 0))
		assert.False(t, math.IsInf(b, 0))
		assert.Greater(t, b, a)
		// -log10 p for z = 60 is about 783.6
		assert.InDelta(t, 783.6, b, 0.05)
	})

	t.Run("non-positive se is rejected", func(t *testing.T) {
		_, ok := FallbackMlog10p(1, 0)
		assert.False(t, ok)
		_, ok = FallbackMlog10p(1, -0.5)
		assert.False(t, ok)
	})
}

func TestIsMissingSignificance(t *testing.T) {
	for _, s := range []string{"", "NA", "inf", "Inf", "+inf", "nan"} {
		assert.True(t, IsMissingSignificance(s), s)
	}
	for _, s := range []string{"0", "7.3", "-inf"} {
		assert.False(t, IsMissingSignificance(s), s)
	}
}
