package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultQueryConfig(t *testing.T) {
	t.Run("Returns correct default values", func(t *testing.T) {
		config := DefaultQueryConfig()

		assert.Equal(t, 3, config.TopK, "Default TopK should be 3")
	})

	t.Run("Can be modified after creation", func(t *testing.T) {
		config := DefaultQueryConfig()
		config.TopK = 10

		assert.Equal(t, 10, config.EffectiveTopK())
	})

	t.Run("Non positive TopK falls back to default", func(t *testing.T) {
		config := QueryConfig{TopK: 0}
		assert.Equal(t, DefaultTopK, config.EffectiveTopK(), "Expected zero TopK to use the default")

		config.TopK = -2
		assert.Equal(t, DefaultTopK, config.EffectiveTopK(), "Expected negative TopK to use the default")

		var nilConfig *QueryConfig
		assert.Equal(t, DefaultTopK, nilConfig.EffectiveTopK(), "Expected nil config to use the default")
	})
}
