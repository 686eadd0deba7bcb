package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/siherrmann/nutricoach"
	"github.com/siherrmann/nutricoach/config"
	"github.com/siherrmann/nutricoach/core/generation"
	"github.com/siherrmann/nutricoach/core/pipeline"
	"github.com/siherrmann/nutricoach/core/prompt"
	"github.com/siherrmann/nutricoach/core/retrieval"
	"github.com/siherrmann/nutricoach/core/store"
	"github.com/siherrmann/nutricoach/helper"
	"github.com/siherrmann/nutricoach/model"
)

func main() {
	storePath := flag.String("store", "embeddings.json", "ingredient store file")
	parent := flag.String("parent", "", "previous question this one follows up on")
	flag.Parse()

	question := strings.Join(flag.Args(), " ")
	if question == "" {
		question = "sugar, palm oil, E621"
	}

	// Load the ingredient knowledge base
	s, err := store.Load(*storePath)
	if err != nil {
		log.Fatalf("Failed to load store: %v", err)
	}
	fmt.Printf("Loaded %d ingredients\n", s.Len())

	// Local embedding model, must match the one the store was built with
	embed, err := pipeline.DefaultEmbedder()
	if err != nil {
		log.Fatalf("Failed to set up embedder: %v", err)
	}

	generator, err := generation.NewGeminiGenerator(context.Background(), generation.GeminiConfig{
		APIKey: config.APIKey("GOOGLE_API_KEY"),
		Model:  generation.DefaultGeminiModel,
	})
	if err != nil {
		log.Fatalf("Failed to set up generator: %v", err)
	}

	copilot, err := nutricoach.NewCopilot(nutricoach.Options{
		Embedder:  pipeline.WithTrim(pipeline.WithDimension(embed, s.Dimension())),
		Searcher:  retrieval.NewMemorySearcher(s),
		Generator: generator,
		Logger:    helper.NewLogger("warn"),
	})
	if err != nil {
		log.Fatalf("Failed to create copilot: %v", err)
	}

	q := model.Query{Query: question, ParentQuery: *parent}
	fmt.Printf("\nQuestion: %s\n", q.Query)

	answer, trace := copilot.AnalyzeWithTrace(context.Background(), q)
	fmt.Printf("Retrieved: %s\n", strings.Join(trace.Retrieved, ", "))
	fmt.Printf("Outcome: %s\n\n", trace.Outcome)
	fmt.Println(prompt.RenderAnswer(answer))

	if trace.Outcome == model.OutcomeFailure {
		os.Exit(1)
	}
}
