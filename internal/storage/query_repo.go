package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// QueryRepo persists answered questions and their feedback.
type QueryRepo struct {
	db *sql.DB
}

// NewQueryRepo creates a new QueryRepo.
func NewQueryRepo(db *sql.DB) *QueryRepo {
	return &QueryRepo{db: db}
}

// Insert logs one query and returns its assigned ID.
func (r *QueryRepo) Insert(ctx context.Context, record *QueryRecord) (int64, error) {
	contexts, err := json.Marshal(record.Contexts)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal contexts: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO query_history
		 (query_text, retrieved_contexts, response_text, response_time_ms, tokens_used, cost_usd)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.QueryText, string(contexts), record.ResponseText,
		record.ResponseTimeMs, record.TokensUsed, record.CostUSD,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert query: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read query id: %w", err)
	}
	return id, nil
}

// UpdateFeedback records user feedback (1 thumbs up, -1 thumbs down).
func (r *QueryRepo) UpdateFeedback(ctx context.Context, queryID int64, feedback int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE query_history SET user_feedback = ? WHERE query_id = ?`,
		feedback, queryID,
	)
	if err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("query %d not found", queryID)
	}
	return nil
}

// GetByID returns one logged query, or (nil, nil) when it does not exist.
func (r *QueryRepo) GetByID(ctx context.Context, queryID int64) (*QueryRecord, error) {
	var (
		record   QueryRecord
		contexts sql.NullString
		feedback sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT query_id, query_text, retrieved_contexts, response_text,
		        response_time_ms, tokens_used, cost_usd, user_feedback, created_at
		 FROM query_history WHERE query_id = ?`, queryID).
		Scan(&record.QueryID, &record.QueryText, &contexts, &record.ResponseText,
			&record.ResponseTimeMs, &record.TokensUsed, &record.CostUSD,
			&feedback, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get query %d: %w", queryID, err)
	}

	if contexts.Valid && contexts.String != "" {
		if err := json.Unmarshal([]byte(contexts.String), &record.Contexts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contexts: %w", err)
		}
	}
	if feedback.Valid {
		fb := int(feedback.Int64)
		record.UserFeedback = &fb
	}
	return &record, nil
}

// Stats aggregates query history over the last N days.
func (r *QueryRepo) Stats(ctx context.Context, days int) (*QueryStats, error) {
	var stats QueryStats
	var avgMs, totalCost, positive sql.NullFloat64
	var totalTokens sql.NullInt64

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        AVG(response_time_ms),
		        SUM(tokens_used),
		        SUM(cost_usd),
		        AVG(CASE WHEN user_feedback = 1 THEN 1.0 ELSE 0.0 END)
		 FROM query_history
		 WHERE created_at >= datetime('now', '-' || ? || ' days')`, days).
		Scan(&stats.TotalQueries, &avgMs, &totalTokens, &totalCost, &positive)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}

	stats.AvgResponseMs = avgMs.Float64
	stats.TotalTokens = totalTokens.Int64
	stats.TotalCostUSD = totalCost.Float64
	stats.PositiveFeedback = positive.Float64
	return &stats, nil
}
