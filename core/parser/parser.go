package parser

import (
	"strings"

	"github.com/siherrmann/nutricoach/core/prompt"
	"github.com/siherrmann/nutricoach/model"
)

type section int

const (
	sectionNone section = iota
	sectionSummary
	sectionDetails
	sectionUncertainty
)

// Parse splits generated text into the three answer sections.
// A line starting with a section header (after trimming) starts that section, the rest
// of the line becomes its first content. Further lines are appended with a single space.
// Text before the first header and blank lines are dropped. A repeated header resets its
// section. Sections that never appear stay empty. Parse never fails.
func Parse(raw string) model.StructuredAnswer {
	var answer model.StructuredAnswer
	current := sectionNone

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, prompt.SummaryHeader):
			current = sectionSummary
			answer.Summary = strings.TrimSpace(strings.TrimPrefix(line, prompt.SummaryHeader))
		case strings.HasPrefix(line, prompt.DetailsHeader):
			current = sectionDetails
			answer.Details = strings.TrimSpace(strings.TrimPrefix(line, prompt.DetailsHeader))
		case strings.HasPrefix(line, prompt.UncertaintyHeader):
			current = sectionUncertainty
			answer.Uncertainty = strings.TrimSpace(strings.TrimPrefix(line, prompt.UncertaintyHeader))
		case line == "":
			continue
		default:
			switch current {
			case sectionSummary:
				answer.Summary = appendLine(answer.Summary, line)
			case sectionDetails:
				answer.Details = appendLine(answer.Details, line)
			case sectionUncertainty:
				answer.Uncertainty = appendLine(answer.Uncertainty, line)
			}
		}
	}

	return answer
}

func appendLine(field string, line string) string {
	if field == "" {
		return line
	}
	return field + " " + line
}
