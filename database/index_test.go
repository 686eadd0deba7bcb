package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeIndexType(t *testing.T) {
	database := initDB(t)

	ingredientsDbHandler, err := NewIngredientsDBHandler(database, 3, true)
	require.NoError(t, err, "Expected NewIngredientsDBHandler to not return an error")

	ctx := context.Background()

	t.Run("Change index to HNSW with default params", func(t *testing.T) {
		err := ingredientsDbHandler.ChangeIndexType(ctx, "hnsw", map[string]interface{}{})
		assert.NoError(t, err, "Expected ChangeIndexType to hnsw to not return an error")
	})

	t.Run("Change index to HNSW with custom params", func(t *testing.T) {
		params := map[string]interface{}{
			"m":               32,
			"ef_construction": 128,
		}
		err := ingredientsDbHandler.ChangeIndexType(ctx, "hnsw", params)
		assert.NoError(t, err, "Expected ChangeIndexType to hnsw with custom params to not return an error")
	})

	t.Run("Change index to IVFFlat with custom params", func(t *testing.T) {
		err := ingredientsDbHandler.ChangeIndexType(ctx, "ivfflat", map[string]interface{}{"lists": 10})
		assert.NoError(t, err, "Expected ChangeIndexType to ivfflat to not return an error")
	})

	t.Run("Remove index", func(t *testing.T) {
		err := ingredientsDbHandler.ChangeIndexType(ctx, "none", nil)
		require.NoError(t, err)

		var exists bool
		err = database.Instance.QueryRow(`SELECT EXISTS(SELECT 1 FROM pg_indexes WHERE indexname = 'idx_ingredients_embedding');`).Scan(&exists)
		require.NoError(t, err)
		assert.False(t, exists, "Expected the vector index to be dropped")
	})

	t.Run("Change index with unsupported index type", func(t *testing.T) {
		err := ingredientsDbHandler.ChangeIndexType(ctx, "invalid", nil)
		assert.Error(t, err, "Expected error when using unsupported index type")
		assert.Contains(t, err.Error(), "unsupported index type", "Expected error message to mention unsupported index type")
	})
}
