package generation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/siherrmann/nutricoach/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoker(t *testing.T) {
	t.Run("Success text is trimmed", func(t *testing.T) {
		invoker := NewInvoker(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			return "\n  Summary: ok\nDetails: d  \n", nil
		}), 0, nil)

		result := invoker.Invoke(context.Background(), "prompt")

		assert.Equal(t, OutcomeOK, result.Outcome)
		assert.Equal(t, "Summary: ok\nDetails: d", result.Text)
		assert.NoError(t, result.Err)
	})

	t.Run("Prompt is passed unchanged", func(t *testing.T) {
		var seen string
		invoker := NewInvoker(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			seen = prompt
			return "x", nil
		}), 0, nil)

		invoker.Invoke(context.Background(), "  the prompt\n")

		assert.Equal(t, "  the prompt\n", seen)
	})

	t.Run("Quota errors are classified", func(t *testing.T) {
		invoker := NewInvoker(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			return "", fmt.Errorf("%w: 429 Too Many Requests", ErrQuotaExhausted)
		}), 0, nil)

		result := invoker.Invoke(context.Background(), "prompt")

		assert.Equal(t, OutcomeQuotaExceeded, result.Outcome)
		answer, ok := result.Fallback()
		require.True(t, ok)
		assert.Equal(t, model.UsageLimitAnswer(), answer)
	})

	t.Run("Other errors are failures", func(t *testing.T) {
		invoker := NewInvoker(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("connection reset by peer")
		}), 0, nil)

		result := invoker.Invoke(context.Background(), "prompt")

		assert.Equal(t, OutcomeFailure, result.Outcome)
		answer, ok := result.Fallback()
		require.True(t, ok)
		assert.Equal(t, "An unexpected error occurred.", answer.Summary)
		assert.Equal(t, "connection reset by peer", answer.Details)
	})

	t.Run("Empty text is a failure", func(t *testing.T) {
		invoker := NewInvoker(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			return "   \n", nil
		}), 0, nil)

		result := invoker.Invoke(context.Background(), "prompt")

		assert.Equal(t, OutcomeFailure, result.Outcome)
		assert.ErrorIs(t, result.Err, ErrEmptyResponse)
	})

	t.Run("Timeout is a failure", func(t *testing.T) {
		invoker := NewInvoker(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}), 20*time.Millisecond, nil)

		start := time.Now()
		result := invoker.Invoke(context.Background(), "prompt")

		assert.Equal(t, OutcomeFailure, result.Outcome)
		assert.ErrorIs(t, result.Err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 5*time.Second, "Expected the timeout to bound the call")
	})

	t.Run("Generator is called once", func(t *testing.T) {
		calls := 0
		invoker := NewInvoker(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			calls++
			return "", fmt.Errorf("%w", ErrQuotaExhausted)
		}), 0, nil)

		invoker.Invoke(context.Background(), "prompt")

		assert.Equal(t, 1, calls, "Expected no retries")
	})

	t.Run("Default timeout", func(t *testing.T) {
		assert.Equal(t, DefaultTimeout, NewInvoker(nil, -1, nil).timeout)
	})
}

func TestResultFallback(t *testing.T) {
	_, ok := Result{Outcome: OutcomeOK, Text: "x"}.Fallback()
	assert.False(t, ok, "Expected no fallback for a successful result")

	assert.Equal(t, "ok", OutcomeOK.String())
	assert.Equal(t, "quota_exceeded", OutcomeQuotaExceeded.String())
	assert.Equal(t, "failure", OutcomeFailure.String())
}
