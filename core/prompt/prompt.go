package prompt

import (
	"fmt"
	"strings"

	"github.com/siherrmann/nutricoach/model"
)

const (
	SummaryHeader     = "Summary:"
	DetailsHeader     = "Details:"
	UncertaintyHeader = "Uncertainty:"
)

const preamble = "You are an expert AI health co-pilot helping consumers make sense of food ingredients."

var rules = []string{
	"Do not make absolute disease claims",
	"Do not repeat ingredient names",
	"Use simple English",
	"Explain tradeoffs",
	"Consider uncertainty",
	"Answer only using the context",
	"Keep it short",
}

// BuildContext renders one line per retrieved record in rank order:
// "<name> → <evidence strength> evidence; <lower cased comma joined tags>"
func BuildContext(result model.RetrievalResult) string {
	lines := make([]string, len(result))
	for i, scored := range result {
		lines[i] = fmt.Sprintf("%s → %s evidence; %s", scored.Record.Name, scored.Record.EvidenceStrength, scored.Record.ConcernTags())
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt combines the ingredient context and the question with the fixed
// rules and the answer template the parser expects.
func BuildPrompt(context string, question string) string {
	var b strings.Builder

	b.WriteString(preamble)
	b.WriteString("\n\nIngredient context:\n")
	b.WriteString(context)
	b.WriteString("\n\nUser question:\n")
	b.WriteString(`"` + question + `"`)
	b.WriteString("\n\nRules:\n")
	for _, rule := range rules {
		b.WriteString("- ")
		b.WriteString(rule)
		b.WriteString("\n")
	}
	b.WriteString("\nIngredient insights:\n")
	b.WriteString(context)
	b.WriteString("\n\nRespond exactly in this format:\n\n")
	b.WriteString(SummaryHeader + "\n")
	b.WriteString(DetailsHeader + "\n")
	b.WriteString(UncertaintyHeader + "\n")

	return b.String()
}

// RenderAnswer writes answer in the template BuildPrompt asks for
func RenderAnswer(answer model.StructuredAnswer) string {
	return strings.Join([]string{
		SummaryHeader, answer.Summary,
		DetailsHeader, answer.Details,
		UncertaintyHeader, answer.Uncertainty,
	}, "\n")
}
