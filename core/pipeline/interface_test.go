package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedEmbedder(embedding []float32, err error) (EmbedFunc, *[]string) {
	var seen []string
	return func(ctx context.Context, text string) ([]float32, error) {
		seen = append(seen, text)
		return embedding, err
	}, &seen
}

func TestWithDimension(t *testing.T) {
	t.Run("Matching dimension passes", func(t *testing.T) {
		embed, _ := fixedEmbedder([]float32{1, 2, 3}, nil)

		embedding, err := WithDimension(embed, 3)(context.Background(), "msg")

		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2, 3}, embedding)
	})

	t.Run("Mismatching dimension is rejected", func(t *testing.T) {
		embed, _ := fixedEmbedder([]float32{1, 2}, nil)

		_, err := WithDimension(embed, 384)(context.Background(), "msg")

		var mismatch *DimensionMismatchError
		require.True(t, errors.As(err, &mismatch), "Expected a DimensionMismatchError")
		assert.Equal(t, 384, mismatch.Expected)
		assert.Equal(t, 2, mismatch.Actual)
	})

	t.Run("Embedder errors pass through", func(t *testing.T) {
		embed, _ := fixedEmbedder(nil, errors.New("model unavailable"))

		_, err := WithDimension(embed, 3)(context.Background(), "msg")

		assert.EqualError(t, err, "model unavailable")
	})

	t.Run("Zero dimension disables the check", func(t *testing.T) {
		embed, _ := fixedEmbedder([]float32{1}, nil)

		_, err := WithDimension(embed, 0)(context.Background(), "msg")

		assert.NoError(t, err)
	})
}

func TestWithTrim(t *testing.T) {
	embed, seen := fixedEmbedder([]float32{1}, nil)

	_, err := WithTrim(embed)(context.Background(), "  is it vegan?\n")

	require.NoError(t, err)
	assert.Equal(t, []string{"is it vegan?"}, *seen)
}
