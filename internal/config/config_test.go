package config

import (
	"log/slog"
	"path/filepath"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VECTOR_SIZE", "768")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.EmbeddingProvider != "local" {
		t.Errorf("EmbeddingProvider = %q, want local", cfg.EmbeddingProvider)
	}
	if cfg.VectorStore != "qdrant" {
		t.Errorf("VectorStore = %q, want qdrant", cfg.VectorStore)
	}
	if cfg.VectorSize != 768 {
		t.Errorf("VectorSize = %d, want 768", cfg.VectorSize)
	}
	if cfg.ChunkSize != 512 || cfg.ChunkOverlap != 50 {
		t.Errorf("chunking = %d/%d, want 512/50", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.SemanticWeight != 0.7 || cfg.LexicalWeight != 0.3 {
		t.Errorf("weights = %v/%v, want 0.7/0.3", cfg.SemanticWeight, cfg.LexicalWeight)
	}
	if cfg.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.TopK)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.APIPort != "9000" {
		t.Errorf("APIPort = %q, want 9000", cfg.APIPort)
	}
}

func TestLoad_VectorSizeRequired(t *testing.T) {
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
	t.Setenv("VECTOR_SIZE", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() without VECTOR_SIZE did not error")
	}

	t.Setenv("VECTOR_SIZE", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with invalid VECTOR_SIZE did not error")
	}

	t.Setenv("VECTOR_SIZE", "-4")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with negative VECTOR_SIZE did not error")
	}
}

func TestLoad_ProviderValidation(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("EMBEDDING_PROVIDER", "voyage")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with unknown provider did not error")
	}

	// openai requires a key.
	t.Setenv("EMBEDDING_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with openai provider and no key did not error")
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.EmbeddingProvider != "openai" {
		t.Errorf("EmbeddingProvider = %q, want openai", cfg.EmbeddingProvider)
	}
}

func TestLoad_ChunkOverlapValidation(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("CHUNK_SIZE", "100")
	t.Setenv("CHUNK_OVERLAP", "100")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with overlap == chunk size did not error")
	}

	t.Setenv("CHUNK_OVERLAP", "150")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with overlap > chunk size did not error")
	}

	t.Setenv("CHUNK_OVERLAP", "20")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChunkSize != 100 || cfg.ChunkOverlap != 20 {
		t.Errorf("chunking = %d/%d, want 100/20", cfg.ChunkSize, cfg.ChunkOverlap)
	}
}

func TestLoad_VectorStoreValidation(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("VECTOR_STORE", "chromadb")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with unknown vector store did not error")
	}

	t.Setenv("VECTOR_STORE", "memory")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.VectorStore != "memory" {
		t.Errorf("VectorStore = %q, want memory", cfg.VectorStore)
	}
}

func TestLoad_LogValidation(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("LOG_LEVEL", "verbose")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with unknown log level did not error")
	}

	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}

	t.Setenv("LOG_FORMAT", "xml")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with unknown log format did not error")
	}
}
