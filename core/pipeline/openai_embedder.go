package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIEmbedderConfig configures an embedder against an OpenAI compatible API
type OpenAIEmbedderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIEmbedder creates an embedder calling the embeddings endpoint of an OpenAI compatible API.
// The store must have been built with the same model.
func OpenAIEmbedder(config OpenAIEmbedderConfig) (EmbedFunc, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("openai embedder: model is required")
	}

	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if config.APIKey != "" {
		opts = append(opts, option.WithAPIKey(config.APIKey))
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}
	client := openai.NewClient(opts...)

	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
			Model: openai.EmbeddingModel(config.Model),
		})
		if err != nil {
			return nil, fmt.Errorf("openai embeddings failed: %w", err)
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}

		embedding := make([]float32, len(resp.Data[0].Embedding))
		for i, v := range resp.Data[0].Embedding {
			embedding[i] = float32(v)
		}
		return embedding, nil
	}, nil
}
