package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/liftwise/coach/pkg/types"
)

func TestGenerateKey_OrderIndependent(t *testing.T) {
	a := GenerateKey(types.FeatureExplanation, map[string]any{"a": 1, "b": 2})
	b := GenerateKey(types.FeatureExplanation, map[string]any{"b": 2, "a": 1})
	assert.Equal(t, a, b)
}

func TestGenerateKey_NestedMapsStable(t *testing.T) {
	p1 := map[string]any{"ctx": map[string]any{"x": 1, "y": 2}, "n": 3}
	p2 := map[string]any{"n": 3, "ctx": map[string]any{"y": 2, "x": 1}}
	assert.Equal(t,
		GenerateKey(types.FeatureCoaching, p1),
		GenerateKey(types.FeatureCoaching, p2),
	)
}

func TestGenerateKey_Distinguishes(t *testing.T) {
	base := GenerateKey(types.FeatureExplanation, map[string]any{"exercise": "squat"})

	t.Run("different feature", func(t *testing.T) {
		other := GenerateKey(types.FeatureCoaching, map[string]any{"exercise": "squat"})
		assert.NotEqual(t, base, other)
	})

	t.Run("different params", func(t *testing.T) {
		other := GenerateKey(types.FeatureExplanation, map[string]any{"exercise": "bench"})
		assert.NotEqual(t, base, other)
	})

	t.Run("extra param", func(t *testing.T) {
		other := GenerateKey(types.FeatureExplanation, map[string]any{"exercise": "squat", "week": 3})
		assert.NotEqual(t, base, other)
	})
}

func TestGenerateKey_EmptyParams(t *testing.T) {
	a := GenerateKey(types.FeatureMotivation, nil)
	b := GenerateKey(types.FeatureMotivation, map[string]any{})
	assert.Equal(t, a, b)
	assert.Contains(t, a, "coach:motivation:")
}
