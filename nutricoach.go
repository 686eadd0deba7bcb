package nutricoach

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/siherrmann/nutricoach/core/generation"
	"github.com/siherrmann/nutricoach/core/parser"
	"github.com/siherrmann/nutricoach/core/pipeline"
	"github.com/siherrmann/nutricoach/core/prompt"
	"github.com/siherrmann/nutricoach/core/retrieval"
	"github.com/siherrmann/nutricoach/helper"
	"github.com/siherrmann/nutricoach/model"
)

// Options holds the dependencies of a Copilot
type Options struct {
	// Embedder must produce embeddings comparable to the searched records
	Embedder  pipeline.EmbedFunc
	Searcher  retrieval.Searcher
	Generator generation.Generator
	// Timeout bounds each generation call, generation.DefaultTimeout if zero
	Timeout     time.Duration
	QueryConfig *model.QueryConfig
	// Logger defaults to a pretty printing info logger on stdout
	Logger *slog.Logger
}

// Copilot answers questions about food ingredients from the ingredient knowledge base
type Copilot struct {
	ranker      *retrieval.Ranker
	invoker     *generation.Invoker
	queryConfig model.QueryConfig
	// Logging
	log *slog.Logger
}

// NewCopilot creates a new Copilot. Only missing dependencies are errors.
func NewCopilot(opts Options) (*Copilot, error) {
	if opts.Embedder == nil {
		return nil, helper.NewError("create copilot", fmt.Errorf("embedder is required"))
	}
	if opts.Searcher == nil {
		return nil, helper.NewError("create copilot", fmt.Errorf("searcher is required"))
	}
	if opts.Generator == nil {
		return nil, helper.NewError("create copilot", fmt.Errorf("generator is required"))
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(helper.NewPrettyHandler(os.Stdout, helper.PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{
				Level: slog.LevelInfo,
			},
		}))
	}

	queryConfig := model.DefaultQueryConfig()
	if opts.QueryConfig != nil {
		queryConfig = *opts.QueryConfig
	}

	return &Copilot{
		ranker:      retrieval.NewRanker(opts.Embedder, opts.Searcher, logger),
		invoker:     generation.NewInvoker(opts.Generator, opts.Timeout, logger),
		queryConfig: queryConfig,
		log:         logger,
	}, nil
}

// Analyze answers q. It always returns an answer, failures are reported
// through the fixed fallback answers.
func (c *Copilot) Analyze(ctx context.Context, q model.Query) model.StructuredAnswer {
	answer, _ := c.AnalyzeWithTrace(ctx, q)
	return answer
}

// AnalyzeWithTrace answers q and reports which records were used and how the answer was produced
func (c *Copilot) AnalyzeWithTrace(ctx context.Context, q model.Query) (model.StructuredAnswer, model.Trace) {
	anchor := q.RetrievalAnchor()
	trace := model.Trace{Anchor: anchor, Retrieved: []string{}}

	if anchor == "" {
		c.log.Info("Empty query", slog.String("outcome", string(model.OutcomeLimitedInformation)))
		trace.Outcome = model.OutcomeLimitedInformation
		return model.LimitedInformationAnswer(), trace
	}

	ranked, err := c.ranker.Rank(ctx, anchor, c.queryConfig.EffectiveTopK())
	if err != nil {
		c.log.Error("Retrieval failed", slog.String("anchor", anchor), slog.String("error", err.Error()))
		trace.Outcome = model.OutcomeFailure
		trace.Error = err.Error()
		return model.FailureAnswer(err), trace
	}
	trace.Retrieved = ranked.Names()

	if len(ranked) == 0 {
		c.log.Info("Nothing retrieved", slog.String("anchor", anchor))
		trace.Outcome = model.OutcomeLimitedInformation
		return model.LimitedInformationAnswer(), trace
	}

	ingredientContext := prompt.BuildContext(ranked)
	text := prompt.BuildPrompt(ingredientContext, q.AnswerAnchor())

	result := c.invoker.Invoke(ctx, text)
	if fallback, ok := result.Fallback(); ok {
		if result.Outcome == generation.OutcomeQuotaExceeded {
			trace.Outcome = model.OutcomeUsageLimit
		} else {
			trace.Outcome = model.OutcomeFailure
		}
		if result.Err != nil {
			trace.Error = result.Err.Error()
		}
		return fallback, trace
	}

	answer := parser.Parse(result.Text)
	trace.Outcome = model.OutcomeAnswered

	c.log.Info(
		"Answered query",
		slog.String("anchor", anchor),
		slog.Bool("follow_up", q.IsFollowUp()),
		slog.Any("retrieved", trace.Retrieved),
	)

	return answer, trace
}
