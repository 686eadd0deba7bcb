package generation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/siherrmann/nutricoach/helper"
	"github.com/siherrmann/nutricoach/model"
)

// DefaultTimeout bounds a single generation call
const DefaultTimeout = 20 * time.Second

// Outcome classifies a generation call
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeQuotaExceeded
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeQuotaExceeded:
		return "quota_exceeded"
	default:
		return "failure"
	}
}

// Result is the outcome of a generation call. Text is set for OutcomeOK,
// Err for the other outcomes.
type Result struct {
	Outcome Outcome
	Text    string
	Err     error
}

// Fallback returns the fixed answer for a failed call.
// The second return value is false for successful calls.
func (r Result) Fallback() (model.StructuredAnswer, bool) {
	switch r.Outcome {
	case OutcomeOK:
		return model.StructuredAnswer{}, false
	case OutcomeQuotaExceeded:
		return model.UsageLimitAnswer(), true
	default:
		return model.FailureAnswer(r.Err), true
	}
}

// Invoker calls a generator once per prompt and turns its errors into results
type Invoker struct {
	generator Generator
	timeout   time.Duration
	log       *slog.Logger
}

// NewInvoker creates a new invoker. A timeout <= 0 uses DefaultTimeout,
// a nil logger discards log output.
func NewInvoker(generator Generator, timeout time.Duration, logger *slog.Logger) *Invoker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Invoker{
		generator: generator,
		timeout:   timeout,
		log:       logger,
	}
}

// Invoke sends prompt to the generator. It never retries.
func (i *Invoker) Invoke(ctx context.Context, prompt string) Result {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	start := time.Now()
	text, err := i.generator.Generate(ctx, prompt)
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, ErrQuotaExhausted) {
			i.log.Warn("Generation quota exhausted", slog.Duration("duration", duration), slog.String("error", err.Error()))
			return Result{Outcome: OutcomeQuotaExceeded, Err: err}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = helper.NewError("generate", err)
		}
		i.log.Error("Generation failed", slog.Duration("duration", duration), slog.String("error", err.Error()))
		return Result{Outcome: OutcomeFailure, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		i.log.Error("Generation returned no text", slog.Duration("duration", duration))
		return Result{Outcome: OutcomeFailure, Err: ErrEmptyResponse}
	}

	i.log.Debug("Generation succeeded", slog.Duration("duration", duration), slog.Int("length", len(text)))
	return Result{Outcome: OutcomeOK, Text: text}
}
