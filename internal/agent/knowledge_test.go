package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSearcher_Search(t *testing.T) {
	s := NewStaticSearcher()

	t.Run("relevant snippet ranks first", func(t *testing.T) {
		out, err := s.Search(context.Background(), "should I take a deload week for fatigue", 3)
		require.NoError(t, err)
		require.NotEmpty(t, out)
		assert.Contains(t, out[0].Content, "deload")
		for i := 1; i < len(out); i++ {
			assert.GreaterOrEqual(t, out[i-1].Score, out[i].Score, "sorted by score")
		}
	})

	t.Run("topK bounds results", func(t *testing.T) {
		out, err := s.Search(context.Background(), "training sets reps weight muscle strength recovery sleep", 2)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(out), 2)
	})

	t.Run("unrelated query returns nothing", func(t *testing.T) {
		out, err := s.Search(context.Background(), "zzqx qwerty", 3)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("empty query returns nothing", func(t *testing.T) {
		out, err := s.Search(context.Background(), "", 3)
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("memoized result is stable", func(t *testing.T) {
		first, err := s.Search(context.Background(), "plateau advice", 3)
		require.NoError(t, err)
		second, err := s.Search(context.Background(), "plateau advice", 3)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
