package model

// Outcome describes how an answer was produced
type Outcome string

const (
	OutcomeAnswered           Outcome = "answered"
	OutcomeLimitedInformation Outcome = "limited_information"
	OutcomeUsageLimit         Outcome = "usage_limit"
	OutcomeFailure            Outcome = "failure"
)

// Trace records what happened while answering a query
type Trace struct {
	Anchor    string   `json:"anchor"`
	Retrieved []string `json:"retrieved"`
	Outcome   Outcome  `json:"outcome"`
	Error     string   `json:"error,omitempty"`
}
