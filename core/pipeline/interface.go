package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// EmbedFunc is a function that generates an embedding for text.
// It must use the same encoder the embedding store was built with.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// DimensionMismatchError is returned when a query embedding cannot be compared to the store
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension %d does not match store dimension %d", e.Actual, e.Expected)
}

// WithDimension wraps embed so embeddings of another length than dimension are rejected.
// A dimension of 0 disables the check.
func WithDimension(embed EmbedFunc, dimension int) EmbedFunc {
	if dimension <= 0 {
		return embed
	}
	return func(ctx context.Context, text string) ([]float32, error) {
		embedding, err := embed(ctx, text)
		if err != nil {
			return nil, err
		}
		if len(embedding) != dimension {
			return nil, &DimensionMismatchError{Expected: dimension, Actual: len(embedding)}
		}
		return embedding, nil
	}
}

// WithTrim wraps embed so surrounding whitespace never changes the embedding
func WithTrim(embed EmbedFunc) EmbedFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embed(ctx, strings.TrimSpace(text))
	}
}
