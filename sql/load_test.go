package sql

import (
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Initialize database extensions", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		// Verify pgvector extension is created
		var exists bool
		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'vector');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "pgvector extension should be created")
	})

	t.Run("Initialize database extensions is idempotent", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		err = Init(db.Instance)
		assert.NoError(t, err)
	})
}

func TestLoadIngredientsSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load ingredients SQL functions", func(t *testing.T) {
		err := LoadIngredientsSql(db.Instance, false)
		assert.NoError(t, err)

		for _, funcName := range IngredientsFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load ingredients SQL functions with force", func(t *testing.T) {
		err := LoadIngredientsSql(db.Instance, true)
		assert.NoError(t, err, "Expected reloading the functions to succeed")
	})

	t.Run("Check functions", func(t *testing.T) {
		exist, err := checkFunctions(db.Instance, IngredientsFunctions)
		require.NoError(t, err)
		assert.True(t, exist)

		exist, err = checkFunctions(db.Instance, []string{"function_that_does_not_exist"})
		require.NoError(t, err)
		assert.False(t, exist)

		exist, err = checkFunctions(db.Instance, nil)
		require.NoError(t, err)
		assert.False(t, exist, "Expected an empty list to never count as loaded")
	})
}
