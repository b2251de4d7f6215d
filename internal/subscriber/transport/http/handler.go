package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tradel/internal/api/dto"
	"tradel/internal/subscriber"
	"tradel/internal/subscriber/service"
	"tradel/internal/whatsapp"
	"tradel/pkg/middleware"
)

// Transport sends the welcome message after an activation; failures are
// logged, not surfaced.
type Transport interface {
	Send(ctx context.Context, address, text string) error
}

type Handler struct {
	Registry  *service.Registry
	Transport Transport
}

func NewHandler(registry *service.Registry, transport Transport) *Handler {
	return &Handler{Registry: registry, Transport: transport}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterSubscriberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err, "phone")
		return
	}

	sub, err := h.Registry.Register(r.Context(), req.Name, req.Phone, req.Country)
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sub)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := h.Registry.Activate(r.Context(), id)
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	if h.Transport != nil {
		if err := h.Transport.Send(r.Context(), sub.Phone, whatsapp.FormatWelcome(sub)); err != nil {
			log.Printf("Could not send welcome message to %s: %v", sub.ID, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := h.Registry.Deactivate(r.Context(), id)
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := h.Registry.Get(r.Context(), id)
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		subs []*subscriber.Subscriber
		err  error
	)
	if r.URL.Query().Get("status") == subscriber.StatusActive {
		subs, err = h.Registry.ListActive(r.Context())
	} else {
		subs, err = h.Registry.List(r.Context())
	}
	if err != nil {
		http.Error(w, "failed to list subscribers", http.StatusInternalServerError)
		return
	}
	if subs == nil {
		subs = []*subscriber.Subscriber{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(subs)
}

func (h *Handler) SetPushToken(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.SetPushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err, "push_token")
		return
	}

	if err := h.Registry.SetPushToken(r.Context(), id, req.PushToken); err != nil {
		writeRegistryError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExpireSweep runs the expiry hook. There is no scheduler in this process;
// the operator (or an external cron) calls this.
func (h *Handler) ExpireSweep(w http.ResponseWriter, r *http.Request) {
	expired, err := h.Registry.ExpireOverdue(r.Context(), time.Now().UTC())
	if err != nil {
		http.Error(w, "sweep failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"expired": expired})
}

func writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, subscriber.ErrInvalidPhone):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrPhoneTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
