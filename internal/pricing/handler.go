package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/ripplecare/event-therapy-platform/internal/quotes"
	"github.com/ripplecare/event-therapy-platform/pkg/logging"
)

// QuoteSource loads the quote and schedule the preview prices.
type QuoteSource interface {
	Get(ctx context.Context, id int64) (*quotes.Quote, error)
	Days(ctx context.Context, quoteID int64) ([]quotes.Day, error)
}

// Handler serves the pricing preview endpoint. A preview never persists
// anything; the send workflow recalculates and saves on its own.
type Handler struct {
	quotes     QuoteSource
	calculator *Calculator
	logger     *logging.Logger
}

func NewHandler(qs QuoteSource, calculator *Calculator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{quotes: qs, calculator: calculator, logger: logger}
}

// previewRequest optionally overrides quote fields so the admin can try
// what-if scenarios before editing the quote.
type previewRequest struct {
	HourlyRate       *float64 `json:"hourly_rate,omitempty"`
	TherapistsNeeded *int     `json:"therapists_needed,omitempty"`
	Arrangement      *string  `json:"service_arrangement,omitempty"`
	DiscountAmount   *float64 `json:"discount_amount,omitempty"`
}

// POST /api/v1/quotes/{quoteID}/pricing/preview
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	quoteID, err := strconv.ParseInt(chi.URLParam(r, "quoteID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid quote id", http.StatusBadRequest)
		return
	}

	var req previewRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	quote, err := h.quotes.Get(r.Context(), quoteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "quote not found", http.StatusNotFound)
			return
		}
		h.logger.Error("pricing preview failed", "quote_id", quoteID, "error", err)
		http.Error(w, "pricing preview failed", http.StatusInternalServerError)
		return
	}
	days, err := h.quotes.Days(r.Context(), quoteID)
	if err != nil {
		h.logger.Error("pricing preview failed", "quote_id", quoteID, "error", err)
		http.Error(w, "pricing preview failed", http.StatusInternalServerError)
		return
	}

	in := Input{
		HourlyRate:       quote.HourlyRate,
		Days:             days,
		Arrangement:      quote.ServiceArrangement,
		TherapistsNeeded: quote.TherapistsNeeded,
		DiscountAmount:   quote.DiscountAmount,
	}
	if req.HourlyRate != nil {
		in.HourlyRate = *req.HourlyRate
	}
	if req.TherapistsNeeded != nil {
		in.TherapistsNeeded = *req.TherapistsNeeded
	}
	if req.Arrangement != nil {
		in.Arrangement = quotes.Arrangement(*req.Arrangement)
	}
	if req.DiscountAmount != nil {
		in.DiscountAmount = *req.DiscountAmount
	}

	totals, err := h.calculator.QuoteTotal(r.Context(), in)
	if err != nil {
		h.logger.Error("pricing preview failed", "quote_id", quoteID, "error", err)
		http.Error(w, "pricing preview failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(totals)
}
