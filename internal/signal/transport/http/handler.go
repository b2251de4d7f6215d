package http

import (
	"encoding/json"
	"log"
	"net/http"

	"tradel/internal/api/dto"
	"tradel/internal/dispatch"
	"tradel/internal/metrics"
	"tradel/internal/signal"
	"tradel/internal/signal/service"
	"tradel/pkg/middleware"
)

type Handler struct {
	SignalService *service.Service
	Dispatcher    *dispatch.Dispatcher
	Transport     dispatch.Transport
}

func NewSignalHandler(svc *service.Service, d *dispatch.Dispatcher, transport dispatch.Transport) *Handler {
	return &Handler{SignalService: svc, Dispatcher: d, Transport: transport}
}

// Webhook receives provider-originated messages. Twilio posts form data,
// not JSON: Body is the message text, From the sender address.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	body := r.FormValue("Body")
	sender := r.FormValue("From")
	log.Printf("Incoming message from %s: %.80s", sender, body)

	isSignal := signal.IsTradingSignal(body)

	reply, err := h.SignalService.HandleInbound(r.Context(), sender, body)
	if err != nil {
		metrics.WebhookMessagesTotal.WithLabelValues("error").Inc()
		http.Error(w, "failed to process message", http.StatusInternalServerError)
		return
	}

	if reply != "" && h.Transport != nil {
		if err := h.Transport.Send(r.Context(), trimWhatsAppAddress(sender), reply); err != nil {
			log.Printf("Reply to %s failed: %v", sender, err)
		}
	}

	status := "not_a_signal"
	switch {
	case isSignal:
		status = "signal_processed"
		metrics.WebhookMessagesTotal.WithLabelValues("signal").Inc()
	case reply != "":
		status = "handled"
		metrics.WebhookMessagesTotal.WithLabelValues("keyword").Inc()
	default:
		metrics.WebhookMessagesTotal.WithLabelValues("ignored").Inc()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// Broadcast sends an arbitrary message to all active subscribers. Partial
// failures are inside the report, not in the HTTP status.
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req dto.BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err, "message")
		return
	}

	report, err := h.Dispatcher.Broadcast(r.Context(), req.Message)
	if err != nil {
		http.Error(w, "broadcast failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// TestBroadcast sends the canary message to validate end-to-end wiring.
func (h *Handler) TestBroadcast(w http.ResponseWriter, r *http.Request) {
	report, err := h.Dispatcher.TestBroadcast(r.Context())
	if err != nil {
		http.Error(w, "broadcast failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// Remind triggers renewal reminders for subscriptions expiring within 3 days.
func (h *Handler) Remind(w http.ResponseWriter, r *http.Request) {
	reminded, err := h.SignalService.RemindExpiring(r.Context(), 3)
	if err != nil {
		http.Error(w, "reminders failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"reminded": reminded})
}

// trimWhatsAppAddress strips the provider prefix and plus so the transport
// gets the same normalized digits it sends to.
func trimWhatsAppAddress(from string) string {
	addr := from
	if len(addr) > 9 && addr[:9] == "whatsapp:" {
		addr = addr[9:]
	}
	if len(addr) > 0 && addr[0] == '+' {
		addr = addr[1:]
	}
	return addr
}
