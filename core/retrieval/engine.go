package retrieval

import (
	"context"
	"log/slog"
	"strings"

	"github.com/siherrmann/nutricoach/core/pipeline"
	"github.com/siherrmann/nutricoach/helper"
	"github.com/siherrmann/nutricoach/model"
)

// Ranker embeds query text and retrieves the most similar ingredient records
type Ranker struct {
	embed    pipeline.EmbedFunc
	searcher Searcher
	log      *slog.Logger
}

// NewRanker creates a new ranker. A nil logger discards log output.
func NewRanker(embed pipeline.EmbedFunc, searcher Searcher, logger *slog.Logger) *Ranker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ranker{
		embed:    embed,
		searcher: searcher,
		log:      logger,
	}
}

// Rank returns the k records most similar to text.
// Blank text or an empty store give an empty result without calling the embedder.
func (r *Ranker) Rank(ctx context.Context, text string, k int) (model.RetrievalResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.RetrievalResult{}, nil
	}

	count, err := r.searcher.Count(ctx)
	if err != nil {
		return nil, helper.NewError("count records", err)
	}
	if count == 0 {
		r.log.Warn("Embedding store is empty")
		return model.RetrievalResult{}, nil
	}

	embedding, err := r.embed(ctx, text)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	result, err := r.searcher.Search(ctx, embedding, k)
	if err != nil {
		return nil, helper.NewError("search records", err)
	}

	r.log.Debug("Ranked ingredients", slog.Int("k", k), slog.Any("names", result.Names()))

	return result, nil
}
