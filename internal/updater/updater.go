// Package updater keeps the rules corpus fresh: it loads documents from a
// source, persists them, and rebuilds the retrieval index as one unit.
package updater

import (
	"context"
	"fmt"
	"time"

	"golfrules-ai/internal/contextutil"
	"golfrules-ai/internal/docsource"
	"golfrules-ai/internal/retrieval"
	"golfrules-ai/internal/storage"
)

// freshnessDataType is the data_freshness row key for the rules corpus.
const freshnessDataType = "rules"

// Updater refreshes the rules corpus from a document source.
type Updater struct {
	source    docsource.Source
	rules     *storage.RuleRepo
	freshness *storage.FreshnessRepo
	retriever *retrieval.Retriever
}

// New creates an Updater. freshness may be nil when refresh bookkeeping is
// not wanted.
func New(source docsource.Source, rules *storage.RuleRepo, freshness *storage.FreshnessRepo, retriever *retrieval.Retriever) *Updater {
	return &Updater{
		source:    source,
		rules:     rules,
		freshness: freshness,
		retriever: retriever,
	}
}

// Refresh loads all documents from the source, upserts them into the rules
// table, and rebuilds the retrieval index from the full stored rule set.
// The index swap is atomic: queries observe either the old corpus or the
// new one. Returns the number of rules refreshed.
func (u *Updater) Refresh(ctx context.Context) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	count, err := u.refresh(ctx)
	if u.freshness != nil {
		record := &storage.FreshnessRecord{
			DataType:       freshnessDataType,
			UpdateStatus:   "success",
			RecordsUpdated: count,
		}
		if err != nil {
			record.UpdateStatus = "failed"
			record.ErrorMessage = err.Error()
		}
		if setErr := u.freshness.Set(ctx, record); setErr != nil {
			logger.ErrorContext(ctx, "failed to record freshness", "error", setErr)
		}
	}
	return count, err
}

func (u *Updater) refresh(ctx context.Context) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := u.source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load documents: %w", err)
	}
	if len(docs) == 0 {
		return 0, fmt.Errorf("document source returned no rules")
	}

	for i := range docs {
		if err := u.rules.Upsert(ctx, &storage.RuleRecord{
			RuleID:        docs[i].RuleID,
			Section:       docs[i].Section,
			Title:         docs[i].Title,
			Content:       docs[i].Content,
			EffectiveDate: docs[i].EffectiveDate,
			SourceURL:     docs[i].SourceURL,
		}); err != nil {
			return 0, fmt.Errorf("failed to store rule %s: %w", docs[i].RuleID, err)
		}
	}

	// Re-index from the stored rule set rather than this load, so rules
	// added by earlier refreshes stay searchable.
	records, err := u.rules.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list stored rules: %w", err)
	}

	indexDocs := make([]retrieval.Document, len(records))
	for i, rec := range records {
		indexDocs[i] = retrieval.Document{
			RuleID:        rec.RuleID,
			Section:       rec.Section,
			Title:         rec.Title,
			Content:       rec.Content,
			EffectiveDate: rec.EffectiveDate,
			SourceURL:     rec.SourceURL,
		}
	}

	if err := u.retriever.Replace(ctx, indexDocs); err != nil {
		return 0, fmt.Errorf("failed to rebuild index: %w", err)
	}

	logger.InfoContext(ctx, "rules refreshed",
		"rules", len(records),
		"chunks", u.retriever.ChunkCount(),
	)
	return len(records), nil
}

// SeedIfEmpty runs a refresh only when the rules table is empty, so a fresh
// install starts with a usable corpus without clobbering loaded data.
func (u *Updater) SeedIfEmpty(ctx context.Context) error {
	count, err := u.rules.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count rules: %w", err)
	}
	if count > 0 {
		// Existing rules still need indexing after a restart.
		_, err := u.reindex(ctx)
		return err
	}
	_, err = u.Refresh(ctx)
	return err
}

func (u *Updater) reindex(ctx context.Context) (int, error) {
	records, err := u.rules.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list stored rules: %w", err)
	}

	docs := make([]retrieval.Document, len(records))
	for i, rec := range records {
		docs[i] = retrieval.Document{
			RuleID:        rec.RuleID,
			Section:       rec.Section,
			Title:         rec.Title,
			Content:       rec.Content,
			EffectiveDate: rec.EffectiveDate,
			SourceURL:     rec.SourceURL,
		}
	}
	if err := u.retriever.Replace(ctx, docs); err != nil {
		return 0, fmt.Errorf("failed to rebuild index: %w", err)
	}
	return len(records), nil
}

// ChunkCount reports the size of the retrieval index after the last
// refresh.
func (u *Updater) ChunkCount() int {
	return u.retriever.ChunkCount()
}

// Start refreshes on the given interval until ctx is cancelled. Errors are
// logged and the loop continues; a failed refresh leaves the previous
// corpus serving.
func (u *Updater) Start(ctx context.Context, interval time.Duration) {
	logger := contextutil.LoggerFromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "updater stopped")
			return
		case <-ticker.C:
			if _, err := u.Refresh(ctx); err != nil {
				logger.ErrorContext(ctx, "scheduled refresh failed", "error", err)
			}
		}
	}
}
