package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// FreshnessRepo tracks when each data type was last refreshed.
type FreshnessRepo struct {
	db *sql.DB
}

// NewFreshnessRepo creates a new FreshnessRepo.
func NewFreshnessRepo(db *sql.DB) *FreshnessRepo {
	return &FreshnessRepo{db: db}
}

// Set records the outcome of a refresh for the given data type.
func (r *FreshnessRepo) Set(ctx context.Context, record *FreshnessRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO data_freshness
		 (data_type, last_update, update_status, records_updated, error_message)
		 VALUES (?, ?, ?, ?, ?)`,
		record.DataType, time.Now().UTC(), record.UpdateStatus,
		record.RecordsUpdated, record.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to set freshness for %s: %w", record.DataType, err)
	}
	return nil
}

// Get returns the freshness row for a data type, or (nil, nil) when the
// type has never been refreshed.
func (r *FreshnessRepo) Get(ctx context.Context, dataType string) (*FreshnessRecord, error) {
	var (
		record FreshnessRecord
		errMsg sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT data_type, last_update, update_status, records_updated, error_message
		 FROM data_freshness WHERE data_type = ?`, dataType).
		Scan(&record.DataType, &record.LastUpdate, &record.UpdateStatus,
			&record.RecordsUpdated, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get freshness for %s: %w", dataType, err)
	}
	record.ErrorMessage = errMsg.String
	return &record, nil
}
