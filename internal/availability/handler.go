package availability

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ripplecare/event-therapy-platform/internal/schedule"
	"github.com/ripplecare/event-therapy-platform/pkg/logging"
)

// Handler serves the availability endpoints for the admin UI.
type Handler struct {
	checker    *Checker
	probeDays  int
	maxResults int
	logger     *logging.Logger
}

func NewHandler(checker *Checker, probeDays, maxResults int, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{checker: checker, probeDays: probeDays, maxResults: maxResults, logger: logger}
}

// GET /api/v1/quotes/{quoteID}/availability
func (h *Handler) CheckQuote(w http.ResponseWriter, r *http.Request) {
	quoteID, err := strconv.ParseInt(chi.URLParam(r, "quoteID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid quote id", http.StatusBadRequest)
		return
	}

	result, err := h.checker.CheckQuote(r.Context(), quoteID)
	if err != nil {
		h.logger.Error("availability check failed", "quote_id", quoteID, "error", err)
		http.Error(w, "availability check failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// GET /api/v1/availability/alternatives?date=2026-03-02&start=10:00&minutes=120&required=2
func (h *Handler) Alternatives(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date, err := time.Parse("2006-01-02", q.Get("date"))
	if err != nil {
		http.Error(w, "invalid or missing date (want YYYY-MM-DD)", http.StatusBadRequest)
		return
	}
	start, err := schedule.ParseTimeOfDay(q.Get("start"))
	if err != nil {
		http.Error(w, "invalid or missing start (want HH:MM)", http.StatusBadRequest)
		return
	}
	minutes, err := strconv.Atoi(q.Get("minutes"))
	if err != nil || minutes <= 0 {
		http.Error(w, "invalid or missing minutes", http.StatusBadRequest)
		return
	}
	required, err := strconv.Atoi(q.Get("required"))
	if err != nil || required <= 0 {
		http.Error(w, "invalid or missing required", http.StatusBadRequest)
		return
	}

	req := AlternativeRequest{Date: date, Start: start, Minutes: minutes, Required: required}
	suggestions, err := h.checker.SuggestAlternatives(r.Context(), req, h.probeDays, h.maxResults)
	if err != nil {
		h.logger.Error("alternative probe failed", "date", q.Get("date"), "error", err)
		http.Error(w, "alternative probe failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"from_date":    date.Format("2006-01-02"),
		"alternatives": suggestions,
	})
}
