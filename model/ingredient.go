package model

import (
	"strings"

	"github.com/google/uuid"
)

// IngredientRecord is one entry of the ingredient knowledge base.
// The embedding is precomputed offline with the same encoder used for queries.
type IngredientRecord struct {
	RID               uuid.UUID `json:"rid,omitempty"`
	Name              string    `json:"name"`
	Embedding         []float32 `json:"embedding"`
	EvidenceStrength  string    `json:"evidence_strength"`
	HealthConcernType []string  `json:"health_concern_type"`
}

// ConcernTags returns the health concern tags lower cased and comma joined
func (r IngredientRecord) ConcernTags() string {
	return strings.ToLower(strings.Join(r.HealthConcernType, ", "))
}
