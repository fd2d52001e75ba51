package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"golfrules-ai/internal/contextutil"
	"golfrules-ai/internal/storage"
)

// defaultStatsDays is the aggregation window when the client does not
// specify one.
const defaultStatsDays = 30

// StatsHandler reports usage and quality statistics.
type StatsHandler struct {
	queries *storage.QueryRepo
	metrics *storage.MetricsRepo
	rules   *storage.RuleRepo
}

// NewStatsHandler creates a new StatsHandler. rules may be nil, in which
// case the corpus section is omitted.
func NewStatsHandler(queries *storage.QueryRepo, metrics *storage.MetricsRepo, rules *storage.RuleRepo) *StatsHandler {
	return &StatsHandler{queries: queries, metrics: metrics, rules: rules}
}

// StatsResponse aggregates query history, metric averages and API costs
// over the requested window.
//
// swagger:model StatsResponse
type StatsResponse struct {
	Days             int                `json:"days"`
	TotalQueries     int                `json:"total_queries"`
	AvgResponseMs    float64            `json:"avg_response_ms"`
	TotalTokens      int64              `json:"total_tokens"`
	TotalCostUSD     float64            `json:"total_cost_usd"`
	PositiveFeedback float64            `json:"positive_feedback"`
	Metrics          StatsMetrics       `json:"metrics"`
	APICosts         map[string]float64 `json:"api_costs"`
	Corpus           *CorpusStats       `json:"corpus,omitempty"`
}

// CorpusStats describes the stored rules corpus.
type CorpusStats struct {
	TotalRules  int    `json:"total_rules"`
	LastUpdated string `json:"last_updated,omitempty"`
}

// StatsMetrics are the averaged answer-quality scores.
type StatsMetrics struct {
	ContextRelevancy float64 `json:"context_relevancy"`
	ContextPrecision float64 `json:"context_precision"`
	AnswerRelevancy  float64 `json:"answer_relevancy"`
	Faithfulness     float64 `json:"faithfulness"`
	CosineSimilarity float64 `json:"cosine_similarity"`
	Evaluations      int     `json:"evaluations"`
}

// ServeHTTP handles stats requests.
//
// swagger:route GET /api/stats getStats
//
// Return aggregated usage and answer-quality statistics. The window
// defaults to 30 days and can be set with the `days` query parameter.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	days := defaultStatsDays
	if param := r.URL.Query().Get("days"); param != "" {
		parsed, err := strconv.Atoi(param)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}

	queryStats, err := h.queries.Stats(ctx, days)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load query stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	averages, err := h.metrics.Averages(ctx, days)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load metric averages", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	costs, err := h.metrics.UsageCosts(ctx, days)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load api costs", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	resp := StatsResponse{
		Days:             days,
		TotalQueries:     queryStats.TotalQueries,
		AvgResponseMs:    queryStats.AvgResponseMs,
		TotalTokens:      queryStats.TotalTokens,
		TotalCostUSD:     queryStats.TotalCostUSD,
		PositiveFeedback: queryStats.PositiveFeedback,
		Metrics: StatsMetrics{
			ContextRelevancy: averages.ContextRelevancy,
			ContextPrecision: averages.ContextPrecision,
			AnswerRelevancy:  averages.AnswerRelevancy,
			Faithfulness:     averages.Faithfulness,
			CosineSimilarity: averages.CosineSimilarity,
			Evaluations:      averages.Evaluations,
		},
		APICosts: costs,
	}

	if h.rules != nil {
		total, err := h.rules.Count(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "failed to count rules", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load stats")
			return
		}
		corpus := &CorpusStats{TotalRules: total}
		if updated, err := h.rules.LastUpdated(ctx); err != nil {
			logger.ErrorContext(ctx, "failed to load last update time", "error", err)
		} else if !updated.IsZero() {
			corpus.LastUpdated = updated.UTC().Format(time.RFC3339)
		}
		resp.Corpus = corpus
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
