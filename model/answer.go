package model

// StructuredAnswer is the answer returned to the caller. Fields are empty
// when the generated text did not contain the matching section.
type StructuredAnswer struct {
	Summary     string `json:"summary"`
	Details     string `json:"details"`
	Uncertainty string `json:"uncertainty"`
}

// LimitedInformationAnswer is returned when nothing can be retrieved for a query
func LimitedInformationAnswer() StructuredAnswer {
	return StructuredAnswer{
		Summary:     "There is very limited information available for these ingredients.",
		Details:     "The ingredient label does not provide enough evidence-backed insights.",
		Uncertainty: "Effects may vary depending on formulation and consumption frequency.",
	}
}

// UsageLimitAnswer is returned when the generation service reports exhausted quota
func UsageLimitAnswer() StructuredAnswer {
	return StructuredAnswer{
		Summary:     "Usage limit reached.",
		Details:     "The AI service is temporarily busy. Please retry in a few seconds.",
		Uncertainty: "Rate limits vary depending on usage and model availability.",
	}
}

// FailureAnswer is returned for any other failure, carrying the error text in Details
func FailureAnswer(err error) StructuredAnswer {
	details := "unknown error"
	if err != nil {
		details = err.Error()
	}
	return StructuredAnswer{
		Summary:     "An unexpected error occurred.",
		Details:     details,
		Uncertainty: "The response could not be generated reliably.",
	}
}
