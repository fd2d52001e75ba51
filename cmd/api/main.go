package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"golfrules-ai/internal/config"
	"golfrules-ai/internal/contextutil"
	"golfrules-ai/internal/docsource"
	"golfrules-ai/internal/embedding"
	"golfrules-ai/internal/http"
	"golfrules-ai/internal/llm"
	"golfrules-ai/internal/qa"
	"golfrules-ai/internal/retrieval"
	"golfrules-ai/internal/storage"
	"golfrules-ai/internal/updater"
	"golfrules-ai/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers golf rules questions with retrieval-augmented
// generation over the USGA Rules of Golf. Questions are matched against
// rule excerpts with hybrid semantic + lexical search, and answers cite
// the specific rules they are based on.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Golf Rules AI API
//   description: |
//     Q&A API for the USGA Rules of Golf. Ask questions, get cited answers,
//     submit feedback, and inspect usage and answer-quality statistics.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	ruleRepo := storage.NewRuleRepo(db)
	queryRepo := storage.NewQueryRepo(db)
	metricsRepo := storage.NewMetricsRepo(db)
	freshnessRepo := storage.NewFreshnessRepo(db)

	ctx := contextutil.WithLogger(context.Background(), logger)

	// Initialize vector store
	var store vectorstore.VectorStore
	switch cfg.VectorStore {
	case "qdrant":
		qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.VectorSize)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		if err := qdrantStore.EnsureCollection(ctx, cfg.QdrantCollection); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.VectorSize)
		store = qdrantStore
	case "memory":
		store = vectorstore.NewMemoryStore(cfg.VectorSize)
		slog.Info("In-memory vector store ready", "vector_size", cfg.VectorSize)
	}

	// Initialize embedding provider. The provider is selected explicitly;
	// a misconfigured provider is a startup failure, not a silent fallback.
	var embedder embedding.Provider
	switch cfg.EmbeddingProvider {
	case "openai":
		embedder = embedding.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	case "local":
		embedder = embedding.NewLocalProvider(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	}
	slog.Info("Embedding provider ready", "provider", embedder.Name(), "model", cfg.EmbeddingModelName)

	// Create retrieval engine
	retriever, err := retrieval.NewRetriever(embedder, store, cfg.QdrantCollection, retrieval.Options{
		ChunkSize:      cfg.ChunkSize,
		ChunkOverlap:   cfg.ChunkOverlap,
		SemanticWeight: cfg.SemanticWeight,
		LexicalWeight:  cfg.LexicalWeight,
	})
	if err != nil {
		log.Fatalf("Failed to create retriever: %v", err)
	}

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Create Q&A service
	qaService := qa.NewService(retriever, llmClient, embedder, queryRepo, metricsRepo,
		qa.CostRates{InputPer1M: cfg.CostInputPer1M, OutputPer1M: cfg.CostOutputPer1M},
		cfg.TopK,
	)
	slog.Info("Q&A service initialized")

	// Pick the rule source: a rules directory when configured, otherwise
	// the embedded samples so a fresh install can answer questions.
	var source docsource.Source
	if cfg.RulesDir != "" {
		source = docsource.NewDirSource(cfg.RulesDir)
		slog.Info("Rule source ready", "dir", cfg.RulesDir)
	} else {
		source = docsource.NewSampleSource()
		slog.Info("Rule source ready", "source", "embedded samples")
	}

	corpusUpdater := updater.New(source, ruleRepo, freshnessRepo, retriever)

	// Seed and index in the background after the router is ready
	go func() {
		slog.Info("Starting background corpus load")
		if err := corpusUpdater.SeedIfEmpty(ctx); err != nil {
			slog.Error("Corpus load completed with errors", "error", err)
		} else {
			slog.Info("Corpus load completed", "chunks", retriever.ChunkCount())
		}
	}()

	// Periodic refresh when configured
	if cfg.RefreshHours > 0 {
		go corpusUpdater.Start(ctx, time.Duration(cfg.RefreshHours)*time.Hour)
		slog.Info("Scheduled refresh enabled", "interval_hours", cfg.RefreshHours)
	}

	// Create router with dependencies
	deps := &http.Deps{
		QAService:   qaService,
		Updater:     corpusUpdater,
		QueryRepo:   queryRepo,
		MetricsRepo: metricsRepo,
		RuleRepo:    ruleRepo,
		VectorStore: store,
		DB:          db,
		Collection:  cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
