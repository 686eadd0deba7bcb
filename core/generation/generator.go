package generation

import (
	"context"
	"errors"
)

// ErrQuotaExhausted is returned by generators when the provider reports
// exhausted quota or rate limiting.
var ErrQuotaExhausted = errors.New("generation quota exhausted")

// ErrEmptyResponse is returned when the provider answered without any text
var ErrEmptyResponse = errors.New("empty response from generator")

// Generator sends a prompt to a language model and returns its raw text reply
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
