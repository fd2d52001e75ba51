package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"golfrules-ai/internal/contextutil"
	"golfrules-ai/internal/updater"
)

// RefreshHandler triggers a rules corpus refresh.
type RefreshHandler struct {
	updater *updater.Updater
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(u *updater.Updater) *RefreshHandler {
	return &RefreshHandler{updater: u}
}

// RefreshResponse reports the outcome of a refresh.
//
// swagger:model RefreshResponse
type RefreshResponse struct {
	Status       string `json:"status"`
	RulesUpdated int    `json:"rules_updated"`
	Chunks       int    `json:"chunks"`
	DurationMs   int64  `json:"duration_ms"`
}

// ServeHTTP handles refresh requests.
//
// swagger:route POST /api/refresh refreshRules
//
// Reload the rules corpus from its document source and rebuild the
// retrieval index. The swap is atomic; queries during the refresh are
// served from the previous corpus.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	start := time.Now()
	count, err := h.updater.Refresh(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Refresh failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(RefreshResponse{
		Status:       "success",
		RulesUpdated: count,
		Chunks:       h.updater.ChunkCount(),
		DurationMs:   time.Since(start).Milliseconds(),
	})
}
