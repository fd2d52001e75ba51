package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"golfrules-ai/internal/contextutil"
	"golfrules-ai/internal/storage"
)

// FeedbackHandler records thumbs up/down feedback for answered queries.
type FeedbackHandler struct {
	queries *storage.QueryRepo
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(queries *storage.QueryRepo) *FeedbackHandler {
	return &FeedbackHandler{queries: queries}
}

// FeedbackRequest represents the feedback payload.
//
// swagger:model FeedbackRequest
type FeedbackRequest struct {
	QueryID  int64 `json:"query_id"`
	Feedback int   `json:"feedback"` // 1 thumbs up, -1 thumbs down
}

// FeedbackResponse acknowledges recorded feedback.
//
// swagger:model FeedbackResponse
type FeedbackResponse struct {
	Status string `json:"status"`
}

// ServeHTTP handles feedback requests.
//
// swagger:route POST /api/feedback submitFeedback
//
// Record user feedback for a previously answered query.
func (h *FeedbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.QueryID <= 0 {
		writeError(w, http.StatusBadRequest, "query_id is required")
		return
	}
	if req.Feedback != 1 && req.Feedback != -1 {
		writeError(w, http.StatusBadRequest, "feedback must be 1 or -1")
		return
	}

	if err := h.queries.UpdateFeedback(ctx, req.QueryID, req.Feedback); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, "Query not found")
			return
		}
		logger.ErrorContext(ctx, "failed to record feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to record feedback")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(FeedbackResponse{Status: "success"})
}
