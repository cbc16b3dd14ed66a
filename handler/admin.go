package handler

import (
	"net/http"
	"time"

	"download-request-service/model"

	"github.com/rs/zerolog/log"
)

// RequestStats backs the admin dashboard stat cards.
type RequestStats struct {
	Total       int64     `json:"total"`
	Pending     int64     `json:"pending"`
	Processing  int64     `json:"processing"`
	Completed   int64     `json:"completed"`
	Rejected    int64     `json:"rejected"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// AdminStats handles GET /admin/stats - per-status request counts.
func (h *RequestHandler) AdminStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.operationTimeout())
	defer cancel()

	total, counts, err := h.requests.Counts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute request stats")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to retrieve statistics")
		return
	}

	SendJSONSuccess(w, http.StatusOK, RequestStats{
		Total:       total,
		Pending:     counts[model.StatusPending],
		Processing:  counts[model.StatusProcessing],
		Completed:   counts[model.StatusCompleted],
		Rejected:    counts[model.StatusRejected],
		LastUpdated: time.Now(),
	})
}
