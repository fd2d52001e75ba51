package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RuleRepo persists rule documents in the rules_content table.
type RuleRepo struct {
	db *sql.DB
}

// NewRuleRepo creates a new RuleRepo.
func NewRuleRepo(db *sql.DB) *RuleRepo {
	return &RuleRepo{db: db}
}

// Upsert inserts or replaces a rule wholesale. Rules are immutable once
// ingested; re-ingestion replaces the row, never patches it.
func (r *RuleRepo) Upsert(ctx context.Context, rule *RuleRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO rules_content
		 (rule_id, section, title, content, effective_date, source_url, last_scraped)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rule.RuleID, rule.Section, rule.Title, rule.Content,
		rule.EffectiveDate, rule.SourceURL, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rule %s: %w", rule.RuleID, err)
	}
	return nil
}

// ListAll returns every rule ordered by rule ID.
func (r *RuleRepo) ListAll(ctx context.Context) ([]*RuleRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rule_id, section, title, content, effective_date, source_url, last_scraped
		 FROM rules_content ORDER BY rule_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var rules []*RuleRecord
	for rows.Next() {
		var rule RuleRecord
		if err := rows.Scan(&rule.RuleID, &rule.Section, &rule.Title, &rule.Content,
			&rule.EffectiveDate, &rule.SourceURL, &rule.LastScraped); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, &rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return rules, nil
}

// GetByID returns one rule, or (nil, nil) when it does not exist.
func (r *RuleRepo) GetByID(ctx context.Context, ruleID string) (*RuleRecord, error) {
	var rule RuleRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT rule_id, section, title, content, effective_date, source_url, last_scraped
		 FROM rules_content WHERE rule_id = ?`, ruleID).
		Scan(&rule.RuleID, &rule.Section, &rule.Title, &rule.Content,
			&rule.EffectiveDate, &rule.SourceURL, &rule.LastScraped)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule %s: %w", ruleID, err)
	}
	return &rule, nil
}

// Count returns the number of stored rules.
func (r *RuleRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rules_content`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rules: %w", err)
	}
	return count, nil
}

// LastUpdated returns the most recent scrape timestamp, or the zero time
// when the table is empty.
func (r *RuleRepo) LastUpdated(ctx context.Context) (time.Time, error) {
	var latest sql.NullTime
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(last_scraped) FROM rules_content`).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("failed to query last update: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time, nil
}
