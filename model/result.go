package model

// ScoredIngredient is a record retrieved for a query together with its cosine similarity
type ScoredIngredient struct {
	Score  float64          `json:"score"`
	Record IngredientRecord `json:"record"`
}

// RetrievalResult holds at most k records ordered by score, highest first
type RetrievalResult []ScoredIngredient

// Names returns the ingredient names in rank order
func (r RetrievalResult) Names() []string {
	names := make([]string, len(r))
	for i, scored := range r {
		names[i] = scored.Record.Name
	}
	return names
}
