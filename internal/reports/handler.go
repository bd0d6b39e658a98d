package reports

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ripplecare/event-therapy-platform/pkg/logging"
)

// Handler serves the pipeline report endpoint.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// GET /api/v1/reports/pipeline?from=2026-03-01&to=2026-04-01
// Defaults to the trailing 30 days when no range is given.
func (h *Handler) Pipeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := q.Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid from date (want YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		from = parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid to date (want YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		to = parsed
	}
	if !to.After(from) {
		http.Error(w, "empty report range", http.StatusBadRequest)
		return
	}

	report, err := h.store.PipelineReport(r.Context(), from, to)
	if err != nil {
		h.logger.Error("pipeline report failed", "error", err)
		http.Error(w, "pipeline report failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
