package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateUnits(t *testing.T) {
	assert.Equal(t, 0, EstimateUnits(""))
	assert.Equal(t, 1, EstimateUnits("ab"), "short text rounds up to one unit")
	assert.Equal(t, 25, EstimateUnits(strings.Repeat("x", 100)))
}

func TestCountTextTokens_EmptyText(t *testing.T) {
	assert.Equal(t, 0, CountTextTokens("gpt-4o-mini", ""))
}

func TestCountTextTokens_NeverZeroForText(t *testing.T) {
	// Whether tiktoken loads or the length fallback kicks in, non-empty
	// text must count as at least one unit.
	n := CountTextTokens("unknown-model-xyz", "hello world")
	assert.GreaterOrEqual(t, n, 1)
}

func TestCountTextTokens_StableForUnknownModel(t *testing.T) {
	// An unknown model must be counted the same way on every call, not
	// shift to a different estimate once a lookup result is cached.
	text := "bench press 5x5 at 80 kilograms with two minutes rest"
	first := CountTextTokens("no-such-model", text)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, CountTextTokens("no-such-model", text))
	}
}
