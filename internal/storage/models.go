package storage

import "time"

// RuleRecord is a rule document as persisted in rules_content.
type RuleRecord struct {
	RuleID        string
	Section       string
	Title         string
	Content       string
	EffectiveDate string
	SourceURL     string
	LastScraped   time.Time
}

// QueryRecord is one answered (or unanswered) question in query_history.
type QueryRecord struct {
	QueryID        int64
	QueryText      string
	Contexts       []string // retrieved chunk texts, stored as JSON
	ResponseText   string
	ResponseTimeMs int64
	TokensUsed     int
	CostUSD        float64
	UserFeedback   *int // 1 thumbs up, -1 thumbs down, nil none
	CreatedAt      time.Time
}

// MetricsRecord holds the evaluation scores logged for one query.
type MetricsRecord struct {
	QueryID          int64
	ContextRelevancy float64
	ContextPrecision float64
	AnswerRelevancy  float64
	Faithfulness     float64
	CosineSimilarity float64
}

// UsageRecord tracks one external API call for cost accounting.
type UsageRecord struct {
	APIName      string // "openai", "local", "llm"
	Operation    string // "chat", "embedding"
	TokensInput  int
	TokensOutput int
	CostUSD      float64
}

// FreshnessRecord tracks when a data type was last refreshed.
type FreshnessRecord struct {
	DataType       string
	LastUpdate     time.Time
	UpdateStatus   string // "success", "failed", "in_progress"
	RecordsUpdated int
	ErrorMessage   string
}

// QueryStats aggregates query_history over a window.
type QueryStats struct {
	TotalQueries    int
	AvgResponseMs   float64
	TotalTokens     int64
	TotalCostUSD    float64
	PositiveFeedback float64 // fraction of queries with thumbs up
}

// MetricsAverages aggregates rag_metrics over a window.
type MetricsAverages struct {
	ContextRelevancy float64
	ContextPrecision float64
	AnswerRelevancy  float64
	Faithfulness     float64
	CosineSimilarity float64
	Evaluations      int
}
