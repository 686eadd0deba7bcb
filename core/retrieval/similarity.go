package retrieval

import (
	"math"
	"sort"

	"github.com/siherrmann/nutricoach/model"
)

// CosineSimilarity returns dot(a, b) / (|a| * |b|), computed in float64.
// It returns 0 if either vector has zero norm. Vectors of different length
// are compared on their common prefix.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RankEmbedding scores every record against embedding and returns the k best,
// highest score first. Equal scores keep store order. k <= 0 uses model.DefaultTopK.
func RankEmbedding(embedding []float32, records []model.IngredientRecord, k int) model.RetrievalResult {
	if k <= 0 {
		k = model.DefaultTopK
	}

	scored := make(model.RetrievalResult, len(records))
	for i, record := range records {
		scored[i] = model.ScoredIngredient{
			Score:  CosineSimilarity(embedding, record.Embedding),
			Record: record,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}
