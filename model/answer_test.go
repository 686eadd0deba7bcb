package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackAnswers(t *testing.T) {
	t.Run("Limited information answer", func(t *testing.T) {
		answer := LimitedInformationAnswer()

		assert.Equal(t, "There is very limited information available for these ingredients.", answer.Summary)
		assert.NotEmpty(t, answer.Details)
		assert.NotEmpty(t, answer.Uncertainty)
	})

	t.Run("Usage limit answer", func(t *testing.T) {
		answer := UsageLimitAnswer()

		assert.Equal(t, "Usage limit reached.", answer.Summary)
		assert.Contains(t, answer.Details, "retry", "Expected a retry suggestion")
	})

	t.Run("Failure answer carries the error text", func(t *testing.T) {
		answer := FailureAnswer(errors.New("dial tcp: connection refused"))

		assert.Equal(t, "An unexpected error occurred.", answer.Summary)
		assert.Equal(t, "dial tcp: connection refused", answer.Details)
		assert.Equal(t, "The response could not be generated reliably.", answer.Uncertainty)
	})

	t.Run("Failure answer without error", func(t *testing.T) {
		assert.Equal(t, "unknown error", FailureAnswer(nil).Details)
	})
}

func TestIngredientRecordConcernTags(t *testing.T) {
	record := IngredientRecord{Name: "Sodium nitrite", HealthConcernType: []string{"Cardiovascular", "Cancer Risk"}}

	assert.Equal(t, "cardiovascular, cancer risk", record.ConcernTags())
	assert.Equal(t, "", IngredientRecord{}.ConcernTags(), "Expected no tags to give an empty string")
}

func TestRetrievalResultNames(t *testing.T) {
	result := RetrievalResult{
		{Score: 0.9, Record: IngredientRecord{Name: "Aspartame"}},
		{Score: 0.4, Record: IngredientRecord{Name: "Sucralose"}},
	}

	assert.Equal(t, []string{"Aspartame", "Sucralose"}, result.Names())
	assert.Empty(t, RetrievalResult{}.Names())
}
