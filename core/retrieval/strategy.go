package retrieval

import (
	"context"

	"github.com/siherrmann/nutricoach/core/store"
	"github.com/siherrmann/nutricoach/model"
)

// Searcher finds the records most similar to an embedding.
// Implementations return at most k records, highest cosine similarity first,
// ties in store order.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, k int) (model.RetrievalResult, error)
	Count(ctx context.Context) (int, error)
}

// MemorySearcher searches the in-memory embedding store with a linear scan
type MemorySearcher struct {
	store *store.Store
}

// NewMemorySearcher creates a new searcher over s
func NewMemorySearcher(s *store.Store) *MemorySearcher {
	return &MemorySearcher{store: s}
}

// Search ranks all records of the store against embedding
func (m *MemorySearcher) Search(ctx context.Context, embedding []float32, k int) (model.RetrievalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return RankEmbedding(embedding, m.store.Records(), k), nil
}

// Count returns the number of records in the store
func (m *MemorySearcher) Count(ctx context.Context) (int, error) {
	return m.store.Len(), nil
}
