package storage

import (
	"context"
	"math"
	"testing"
)

func TestQueryRepo_InsertAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewQueryRepo(db)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &QueryRecord{
		QueryText:      "what is a lost ball?",
		Contexts:       []string{"rule-18", "rule-17"},
		ResponseText:   "A ball is lost after three minutes of search.",
		ResponseTimeMs: 850,
		TokensUsed:     1200,
		CostUSD:        0.0123,
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if id <= 0 {
		t.Fatalf("Insert() returned id %d, want > 0", id)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetByID() returned nil for existing query")
	}
	if got.QueryText != "what is a lost ball?" {
		t.Errorf("QueryText = %q", got.QueryText)
	}
	if len(got.Contexts) != 2 || got.Contexts[0] != "rule-18" {
		t.Errorf("Contexts = %v, want [rule-18 rule-17]", got.Contexts)
	}
	if got.UserFeedback != nil {
		t.Errorf("UserFeedback = %v, want nil before feedback", *got.UserFeedback)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestQueryRepo_GetByID_Missing(t *testing.T) {
	db := newTestDB(t)
	repo := NewQueryRepo(db)

	got, err := repo.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetByID() = %+v, want nil for missing query", got)
	}
}

func TestQueryRepo_UpdateFeedback(t *testing.T) {
	db := newTestDB(t)
	repo := NewQueryRepo(db)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &QueryRecord{QueryText: "q"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := repo.UpdateFeedback(ctx, id, 1); err != nil {
		t.Fatalf("UpdateFeedback() error = %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.UserFeedback == nil || *got.UserFeedback != 1 {
		t.Errorf("UserFeedback = %v, want 1", got.UserFeedback)
	}

	// Unknown query IDs are an error, not a silent no-op.
	if err := repo.UpdateFeedback(ctx, 9999, -1); err == nil {
		t.Error("UpdateFeedback() on missing query did not error")
	}
}

func TestQueryRepo_Stats(t *testing.T) {
	db := newTestDB(t)
	repo := NewQueryRepo(db)
	ctx := context.Background()

	id1, err := repo.Insert(ctx, &QueryRecord{QueryText: "q1", ResponseTimeMs: 100, TokensUsed: 50, CostUSD: 0.01})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := repo.Insert(ctx, &QueryRecord{QueryText: "q2", ResponseTimeMs: 300, TokensUsed: 150, CostUSD: 0.03}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := repo.UpdateFeedback(ctx, id1, 1); err != nil {
		t.Fatalf("UpdateFeedback() error = %v", err)
	}

	stats, err := repo.Stats(ctx, 30)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalQueries != 2 {
		t.Errorf("TotalQueries = %d, want 2", stats.TotalQueries)
	}
	if stats.AvgResponseMs != 200 {
		t.Errorf("AvgResponseMs = %v, want 200", stats.AvgResponseMs)
	}
	if stats.TotalTokens != 200 {
		t.Errorf("TotalTokens = %d, want 200", stats.TotalTokens)
	}
	if stats.PositiveFeedback != 0.5 {
		t.Errorf("PositiveFeedback = %v, want 0.5", stats.PositiveFeedback)
	}
}

func TestQueryRepo_Stats_Empty(t *testing.T) {
	db := newTestDB(t)
	repo := NewQueryRepo(db)

	stats, err := repo.Stats(context.Background(), 30)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalQueries != 0 {
		t.Errorf("TotalQueries = %d on empty table, want 0", stats.TotalQueries)
	}
}

func TestMetricsRepo_InsertAndAverages(t *testing.T) {
	db := newTestDB(t)
	queries := NewQueryRepo(db)
	metrics := NewMetricsRepo(db)
	ctx := context.Background()

	id, err := queries.Insert(ctx, &QueryRecord{QueryText: "q"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := metrics.Insert(ctx, &MetricsRecord{
		QueryID:          id,
		ContextRelevancy: 0.8,
		ContextPrecision: 1.0,
		AnswerRelevancy:  0.9,
		Faithfulness:     0.7,
		CosineSimilarity: 0.9,
	}); err != nil {
		t.Fatalf("metrics.Insert() error = %v", err)
	}
	if err := metrics.Insert(ctx, &MetricsRecord{
		QueryID:          id,
		ContextRelevancy: 0.4,
		ContextPrecision: 0.8,
		AnswerRelevancy:  0.5,
		Faithfulness:     0.3,
		CosineSimilarity: 0.5,
	}); err != nil {
		t.Fatalf("metrics.Insert() error = %v", err)
	}

	avg, err := metrics.Averages(ctx, 30)
	if err != nil {
		t.Fatalf("Averages() error = %v", err)
	}
	if avg.Evaluations != 2 {
		t.Errorf("Evaluations = %d, want 2", avg.Evaluations)
	}
	if math.Abs(avg.ContextRelevancy-0.6) > 1e-9 {
		t.Errorf("ContextRelevancy = %v, want 0.6", avg.ContextRelevancy)
	}
	if math.Abs(avg.Faithfulness-0.5) > 1e-9 {
		t.Errorf("Faithfulness = %v, want 0.5", avg.Faithfulness)
	}
}

func TestMetricsRepo_UsageCosts(t *testing.T) {
	db := newTestDB(t)
	metrics := NewMetricsRepo(db)
	ctx := context.Background()

	usage := []*UsageRecord{
		{APIName: "llm", Operation: "answer", TokensInput: 1000, TokensOutput: 200, CostUSD: 0.006},
		{APIName: "llm", Operation: "answer", TokensInput: 500, TokensOutput: 100, CostUSD: 0.003},
		{APIName: "openai", Operation: "embedding", TokensInput: 300, CostUSD: 0.001},
	}
	for _, u := range usage {
		if err := metrics.InsertUsage(ctx, u); err != nil {
			t.Fatalf("InsertUsage() error = %v", err)
		}
	}

	costs, err := metrics.UsageCosts(ctx, 30)
	if err != nil {
		t.Fatalf("UsageCosts() error = %v", err)
	}
	if got := costs["llm"]; math.Abs(got-0.009) > 1e-9 {
		t.Errorf("llm cost = %v, want 0.009", got)
	}
	if got := costs["openai"]; math.Abs(got-0.001) > 1e-9 {
		t.Errorf("openai cost = %v, want 0.001", got)
	}
}

func TestFreshnessRepo_SetAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewFreshnessRepo(db)
	ctx := context.Background()

	got, err := repo.Get(ctx, "rules")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v before any refresh, want nil", got)
	}

	if err := repo.Set(ctx, &FreshnessRecord{
		DataType:       "rules",
		UpdateStatus:   "success",
		RecordsUpdated: 24,
	}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err = repo.Get(ctx, "rules")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil after Set")
	}
	if got.UpdateStatus != "success" || got.RecordsUpdated != 24 {
		t.Errorf("Get() = %+v, want success/24", got)
	}
	if got.LastUpdate.IsZero() {
		t.Error("LastUpdate not set")
	}

	// Second Set replaces the row.
	if err := repo.Set(ctx, &FreshnessRecord{
		DataType:     "rules",
		UpdateStatus: "failed",
		ErrorMessage: "source unavailable",
	}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err = repo.Get(ctx, "rules")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UpdateStatus != "failed" || got.ErrorMessage != "source unavailable" {
		t.Errorf("Get() = %+v, want failed/source unavailable", got)
	}
}
