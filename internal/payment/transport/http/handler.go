package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"tradel/internal/api/dto"
	"tradel/internal/payment/service"
	subscriberservice "tradel/internal/subscriber/service"
	"tradel/pkg/middleware"
)

type Handler struct {
	Tracker         *service.Tracker
	DefaultCurrency string
}

func NewPaymentHandler(tracker *service.Tracker, defaultCurrency string) *Handler {
	return &Handler{Tracker: tracker, DefaultCurrency: defaultCurrency}
}

func (h *Handler) RecordPending(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err, "")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = h.DefaultCurrency
	}

	p, err := h.Tracker.RecordPending(r.Context(), req.SubscriberID, amount, currency)
	if err != nil {
		writePaymentError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid payment id", http.StatusBadRequest)
		return
	}

	p, err := h.Tracker.Confirm(r.Context(), id)
	if err != nil {
		writePaymentError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (h *Handler) PendingSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Tracker.PendingSummary(r.Context())
	if err != nil {
		http.Error(w, "failed to load summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func (h *Handler) ConfirmedSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Tracker.ConfirmedSummary(r.Context())
	if err != nil {
		http.Error(w, "failed to load summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func writePaymentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, subscriberservice.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrAlreadyConfirmed):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
