package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// MetricsRepo persists per-query evaluation scores and API usage.
type MetricsRepo struct {
	db *sql.DB
}

// NewMetricsRepo creates a new MetricsRepo.
func NewMetricsRepo(db *sql.DB) *MetricsRepo {
	return &MetricsRepo{db: db}
}

// Insert logs the evaluation scores for one query.
func (r *MetricsRepo) Insert(ctx context.Context, record *MetricsRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rag_metrics
		 (query_id, context_relevancy, context_precision, answer_relevancy, faithfulness, cosine_similarity)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.QueryID, record.ContextRelevancy, record.ContextPrecision,
		record.AnswerRelevancy, record.Faithfulness, record.CosineSimilarity,
	)
	if err != nil {
		return fmt.Errorf("failed to insert metrics: %w", err)
	}
	return nil
}

// Averages aggregates rag_metrics over the last N days.
func (r *MetricsRepo) Averages(ctx context.Context, days int) (*MetricsAverages, error) {
	var (
		avg                              MetricsAverages
		rel, prec, ans, faith, cos sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(context_relevancy), AVG(context_precision), AVG(answer_relevancy),
		        AVG(faithfulness), AVG(cosine_similarity), COUNT(*)
		 FROM rag_metrics
		 WHERE created_at >= datetime('now', '-' || ? || ' days')`, days).
		Scan(&rel, &prec, &ans, &faith, &cos, &avg.Evaluations)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric averages: %w", err)
	}

	avg.ContextRelevancy = rel.Float64
	avg.ContextPrecision = prec.Float64
	avg.AnswerRelevancy = ans.Float64
	avg.Faithfulness = faith.Float64
	avg.CosineSimilarity = cos.Float64
	return &avg, nil
}

// InsertUsage logs one external API call for cost accounting.
func (r *MetricsRepo) InsertUsage(ctx context.Context, record *UsageRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_usage (api_name, operation, tokens_input, tokens_output, cost_usd)
		 VALUES (?, ?, ?, ?, ?)`,
		record.APIName, record.Operation, record.TokensInput, record.TokensOutput, record.CostUSD,
	)
	if err != nil {
		return fmt.Errorf("failed to insert api usage: %w", err)
	}
	return nil
}

// UsageCosts returns the total cost per API over the last N days.
func (r *MetricsRepo) UsageCosts(ctx context.Context, days int) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT api_name, SUM(cost_usd)
		 FROM api_usage
		 WHERE created_at >= datetime('now', '-' || ? || ' days')
		 GROUP BY api_name`, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query api costs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	costs := make(map[string]float64)
	for rows.Next() {
		var name string
		var cost sql.NullFloat64
		if err := rows.Scan(&name, &cost); err != nil {
			return nil, fmt.Errorf("failed to scan api cost: %w", err)
		}
		costs[name] = cost.Float64
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return costs, nil
}
