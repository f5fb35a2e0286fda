package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/docwell/docsearch/pkg/logger"
)

// Handler serves the aggregated analytics stats over HTTP.
type Handler struct {
	agg    *Aggregator
	logger *slog.Logger
}

// NewHandler creates the analytics HTTP handler.
func NewHandler(agg *Aggregator) *Handler {
	return &Handler{
		agg:    agg,
		logger: logger.WithComponent("analytics-handler"),
	}
}

// Stats writes the current aggregated stats as JSON.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.agg.Stats()); err != nil {
		h.logger.Error("failed to write analytics response", "error", err)
	}
}
