package prompt

import (
	"strings"
	"testing"

	"github.com/siherrmann/nutricoach/model"
	"github.com/stretchr/testify/assert"
)

func TestBuildContext(t *testing.T) {
	t.Run("One line per record in rank order", func(t *testing.T) {
		result := model.RetrievalResult{
			{Score: 0.9, Record: model.IngredientRecord{Name: "Aspartame", EvidenceStrength: "moderate", HealthConcernType: []string{"Metabolic"}}},
			{Score: 0.5, Record: model.IngredientRecord{Name: "Sodium nitrite", EvidenceStrength: "strong", HealthConcernType: []string{"Cardiovascular", "Cancer"}}},
		}

		context := BuildContext(result)

		assert.Equal(t, "Aspartame → moderate evidence; metabolic\nSodium nitrite → strong evidence; cardiovascular, cancer", context)
	})

	t.Run("Record without tags", func(t *testing.T) {
		result := model.RetrievalResult{
			{Record: model.IngredientRecord{Name: "Citric acid", EvidenceStrength: "weak", HealthConcernType: []string{}}},
		}

		assert.Equal(t, "Citric acid → weak evidence; ", BuildContext(result))
	})

	t.Run("Empty result gives empty context", func(t *testing.T) {
		assert.Equal(t, "", BuildContext(nil))
	})
}

func TestBuildPrompt(t *testing.T) {
	context := "Aspartame → moderate evidence; metabolic"
	prompt := BuildPrompt(context, "Is this safe for kids?")

	t.Run("Contains context and question", func(t *testing.T) {
		assert.Contains(t, prompt, "Ingredient context:\n"+context)
		assert.Contains(t, prompt, `"Is this safe for kids?"`)
	})

	t.Run("Contains every rule", func(t *testing.T) {
		for _, rule := range rules {
			assert.Contains(t, prompt, "- "+rule)
		}
	})

	t.Run("Template headers in order at the end", func(t *testing.T) {
		summary := strings.LastIndex(prompt, SummaryHeader)
		details := strings.LastIndex(prompt, DetailsHeader)
		uncertainty := strings.LastIndex(prompt, UncertaintyHeader)

		assert.Less(t, summary, details)
		assert.Less(t, details, uncertainty)
		assert.True(t, strings.HasSuffix(prompt, "Summary:\nDetails:\nUncertainty:\n"))
	})

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, prompt, BuildPrompt(context, "Is this safe for kids?"))
	})

	t.Run("Question is echoed literally", func(t *testing.T) {
		assert.Contains(t, BuildPrompt(context, `Is "sugar free" better?`), `"Is "sugar free" better?"`)
	})
}

func TestRenderAnswer(t *testing.T) {
	answer := model.StructuredAnswer{Summary: "s", Details: "d", Uncertainty: "u"}

	assert.Equal(t, "Summary:\ns\nDetails:\nd\nUncertainty:\nu", RenderAnswer(answer))
}
