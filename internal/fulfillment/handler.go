package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/ripplecare/event-therapy-platform/internal/bookings"
	"github.com/ripplecare/event-therapy-platform/internal/quotes"
	"github.com/ripplecare/event-therapy-platform/pkg/logging"
)

// Handler serves the admin workflow endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type sendRequest struct {
	Assignments []AssignmentInput `json:"assignments"`
}

// POST /api/v1/quotes/{quoteID}/send
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, h.service.Send)
}

// POST /api/v1/quotes/{quoteID}/resend
func (h *Handler) Resend(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, h.service.Resend)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, quoteID int64, inputs []AssignmentInput) (*SendResult, error)) {
	quoteID, ok := quoteIDParam(w, r)
	if !ok {
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := run(r.Context(), quoteID, req.Assignments)
	if err != nil {
		h.writeWorkflowError(w, quoteID, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// POST /api/v1/quotes/{quoteID}/decline
func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	quoteID, ok := quoteIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.Decline(r.Context(), quoteID)
	if err != nil {
		h.writeWorkflowError(w, quoteID, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) writeWorkflowError(w http.ResponseWriter, quoteID int64, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		http.Error(w, "quote not found", http.StatusNotFound)
	case errors.Is(err, quotes.ErrIllegalTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, bookings.ErrSlotTaken):
		http.Error(w, bookings.ErrSlotTaken.Error(), http.StatusConflict)
	case errors.Is(err, bookings.ErrNoAssignments), errors.Is(err, bookings.ErrQuoteIncomplete):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.Error("workflow request failed", "quote_id", quoteID, "error", err)
		http.Error(w, "workflow request failed", http.StatusInternalServerError)
	}
}

func quoteIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	quoteID, err := strconv.ParseInt(chi.URLParam(r, "quoteID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid quote id", http.StatusBadRequest)
		return 0, false
	}
	return quoteID, true
}
