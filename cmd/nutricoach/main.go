package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/siherrmann/nutricoach"
	"github.com/siherrmann/nutricoach/audit"
	"github.com/siherrmann/nutricoach/config"
	"github.com/siherrmann/nutricoach/core/generation"
	"github.com/siherrmann/nutricoach/core/pipeline"
	"github.com/siherrmann/nutricoach/core/retrieval"
	"github.com/siherrmann/nutricoach/core/store"
	"github.com/siherrmann/nutricoach/database"
	"github.com/siherrmann/nutricoach/helper"
	"github.com/siherrmann/nutricoach/model"
	"github.com/siherrmann/nutricoach/server"
	loadSql "github.com/siherrmann/nutricoach/sql"
)

func main() {
	configPath := flag.String("config", "nutricoach.yaml", "path to the config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := helper.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	s, err := store.Load(cfg.StorePath)
	if err != nil {
		return err
	}
	logger.Info("Loaded ingredient store", slog.String("path", cfg.StorePath), slog.Int("records", s.Len()), slog.Int("dimension", s.Dimension()))

	embed, err := newEmbedder(cfg.Embedder)
	if err != nil {
		return err
	}
	if s.Dimension() > 0 {
		embed = pipeline.WithDimension(embed, s.Dimension())
	}
	embed = pipeline.WithTrim(embed)

	searcher, closeSearcher, err := newSearcher(ctx, cfg.Search, s, logger)
	if err != nil {
		return err
	}
	defer closeSearcher()

	generator, err := newGenerator(ctx, cfg.Generator)
	if err != nil {
		return err
	}

	copilot, err := nutricoach.NewCopilot(nutricoach.Options{
		Embedder:    embed,
		Searcher:    searcher,
		Generator:   generator,
		Timeout:     cfg.GenerationTimeout(),
		QueryConfig: &model.QueryConfig{TopK: cfg.TopK},
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	var auditLog server.AuditLog
	if cfg.Audit.Path != "" {
		l, err := audit.Open(cfg.Audit.Path)
		if err != nil {
			return err
		}
		defer func() { _ = l.Close() }()
		auditLog = l
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(copilot, auditLog, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", slog.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newEmbedder(cfg config.EmbedderConfig) (pipeline.EmbedFunc, error) {
	switch cfg.Type {
	case "hugot":
		if cfg.ModelDir != "" {
			helper.ModelDir = cfg.ModelDir
		}
		return pipeline.HugotEmbedder(cfg.Model, cfg.OnnxFile)
	case "openai":
		return pipeline.OpenAIEmbedder(pipeline.OpenAIEmbedderConfig{
			APIKey:  config.APIKey(cfg.OpenAI.APIKeyEnv),
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Timeout: time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

func newSearcher(ctx context.Context, cfg config.SearchConfig, s *store.Store, logger *slog.Logger) (retrieval.Searcher, func(), error) {
	if cfg.Type != "postgres" {
		return retrieval.NewMemorySearcher(s), func() {}, nil
	}

	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return nil, nil, err
	}
	db := helper.NewDatabase("nutricoach", dbConfig, logger)
	if err := loadSql.Init(db.Instance); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	handler, err := database.NewIngredientsDBHandler(db, s.Dimension(), cfg.Seed)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if cfg.Seed {
		if err := handler.SeedFromStore(ctx, s); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("Seeded ingredients table", slog.Int("records", s.Len()))
	}
	if err := handler.ChangeIndexType(ctx, cfg.Index, nil); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return handler, func() { _ = db.Close() }, nil
}

func newGenerator(ctx context.Context, cfg config.GeneratorConfig) (generation.Generator, error) {
	switch cfg.Type {
	case "gemini":
		return generation.NewGeminiGenerator(ctx, generation.GeminiConfig{
			APIKey: config.APIKey(cfg.APIKeyEnv),
			Model:  cfg.Model,
		})
	case "openai":
		return generation.NewOpenAIGenerator(generation.OpenAIConfig{
			APIKey:  config.APIKey(cfg.OpenAI.APIKeyEnv),
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})
	default:
		return nil, fmt.Errorf("unknown generator: %s", cfg.Type)
	}
}
