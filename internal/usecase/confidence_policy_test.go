package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy(t *testing.T) {
	t.Run("zero config uses defaults", func(t *testing.T) {
		p := NewPolicy(PolicyConfig{})
		assert.Equal(t, DefaultMaxAlternatives, p.MaxAlternatives())
		assert.True(t, p.Accept(0.69))
		assert.False(t, p.Accept(0.7))
		assert.True(t, p.RequiresConfirmation(0.79))
		assert.False(t, p.RequiresConfirmation(0.8))
	})

	t.Run("custom thresholds", func(t *testing.T) {
		p := NewPolicy(PolicyConfig{MatchThreshold: 0.3, ConfirmThreshold: 0.95, MaxAlternatives: 4})
		assert.False(t, p.Accept(0.3))
		assert.True(t, p.RequiresConfirmation(0.9))
		assert.Equal(t, 4, p.MaxAlternatives())
	})

	t.Run("alternatives can be turned off", func(t *testing.T) {
		assert.Zero(t, NewPolicy(PolicyConfig{MaxAlternatives: NoAlternatives}).MaxAlternatives())
		assert.Zero(t, NewPolicy(PolicyConfig{MaxAlternatives: -5}).MaxAlternatives())
	})

	t.Run("confidence is one minus distance", func(t *testing.T) {
		p := NewPolicy(PolicyConfig{})
		assert.Equal(t, 1.0, p.Confidence(0))
		assert.InDelta(t, 0.75, p.Confidence(0.25), 1e-9)
	})
}

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 5, ClampQuantity(5, 10))
	assert.Equal(t, 3, ClampQuantity(5, 3))
	assert.Equal(t, 5, ClampQuantity(5, 0))
}
