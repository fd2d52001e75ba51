// Package handlers contains the HTTP handlers for the rules Q&A API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golfrules-ai/internal/contextutil"
	"golfrules-ai/internal/qa"
	"golfrules-ai/internal/retrieval"
)

// maxTopK bounds user-provided k values.
const maxTopK = 20

// AskHandler handles HTTP requests for rules questions.
type AskHandler struct {
	service *qa.Service
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(service *qa.Service) *AskHandler {
	return &AskHandler{service: service}
}

// AskRequest represents the HTTP request payload for rules questions.
//
// swagger:model AskRequest
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
	Evaluate bool   `json:"evaluate,omitempty"`
}

// AskResponse represents the HTTP response payload for rules questions.
//
// swagger:model AskResponse
type AskResponse struct {
	// The generated answer, with rule citations
	Answer string `json:"answer"`

	// Found is false when no relevant rules were retrieved and the answer
	// is the canned not-found message
	Found bool `json:"found"`

	// Citations lists the rule excerpts the answer is grounded on
	Citations []qa.Citation `json:"citations"`

	// Metrics holds the answer-quality scores when evaluation was requested
	Metrics        *evalMetrics `json:"metrics,omitempty"`
	QueryID        int64        `json:"query_id,omitempty"`
	ResponseTimeMs int64        `json:"response_time_ms"`
	TokensUsed     int          `json:"tokens_used"`
	CostUSD        float64      `json:"cost_usd"`
}

type evalMetrics struct {
	ContextRelevancy float64 `json:"context_relevancy"`
	ContextPrecision float64 `json:"context_precision"`
	AnswerRelevancy  float64 `json:"answer_relevancy"`
	Faithfulness     float64 `json:"faithfulness"`
	CosineSimilarity float64 `json:"cosine_similarity"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for rules questions.
//
// swagger:route POST /api/ask askQuestion
//
// Ask a golf rules question. The system retrieves relevant rule excerpts
// with hybrid semantic + lexical search and generates a cited answer.
// Set evaluate=true to include answer-quality metrics in the response.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	// Enforce bounds for user-provided k. Zero means "use the default".
	if req.TopK < 0 {
		req.TopK = 0
	}
	if req.TopK > maxTopK {
		req.TopK = maxTopK
	}

	result, err := h.service.Answer(ctx, req.Question, req.TopK, req.Evaluate)
	if err != nil {
		handleAnswerError(w, r, err)
		return
	}

	resp := AskResponse{
		Answer:         result.Answer,
		Found:          result.Found,
		Citations:      result.Citations,
		QueryID:        result.QueryID,
		ResponseTimeMs: result.ResponseTimeMs,
		TokensUsed:     result.TokensUsed,
		CostUSD:        result.CostUSD,
	}
	if resp.Citations == nil {
		resp.Citations = []qa.Citation{}
	}
	if result.Metrics != nil {
		resp.Metrics = &evalMetrics{
			ContextRelevancy: result.Metrics.ContextRelevancy,
			ContextPrecision: result.Metrics.ContextPrecision,
			AnswerRelevancy:  result.Metrics.AnswerRelevancy,
			Faithfulness:     result.Metrics.Faithfulness,
			CosineSimilarity: result.Metrics.CosineSimilarity,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleAnswerError maps pipeline errors to HTTP status codes: provider
// outages are 502, vector store trouble is 503, everything else 500.
func handleAnswerError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "failed to answer question", "error", err)

	if errors.Is(err, retrieval.ErrProvider) {
		writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "vector") || strings.Contains(errMsg, "qdrant") {
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
		return
	}
	if strings.Contains(errMsg, "generation") || strings.Contains(errMsg, "llm") {
		writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	writeError(w, http.StatusInternalServerError, "Failed to answer question")
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
