package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// Alert delivery metrics
	AlertsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_sent_total",
			Help: "Total number of per-recipient alert deliveries",
		},
		[]string{"outcome"},
	)
	BroadcastsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcasts_total",
			Help: "Total number of broadcast operations",
		},
	)
	BroadcastDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "broadcast_duration_seconds",
			Help: "Duration of a full broadcast fan-out in seconds",
		},
	)

	// Twilio API metrics
	TwilioRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twilio_api_requests_total",
			Help: "Total number of Twilio API requests",
		},
		[]string{"status"},
	)
	TwilioRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "twilio_api_request_duration_seconds",
			Help: "Duration of Twilio API requests in seconds",
		},
	)

	// Registry metrics
	SubscribersActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "subscribers_active",
			Help: "Number of currently active subscribers",
		},
	)
	WebhookMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_messages_total",
			Help: "Inbound WhatsApp webhook messages by handling result",
		},
		[]string{"result"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsInFlight)

	prometheus.MustRegister(AlertsSentTotal)
	prometheus.MustRegister(BroadcastsTotal)
	prometheus.MustRegister(BroadcastDuration)

	prometheus.MustRegister(TwilioRequestsTotal)
	prometheus.MustRegister(TwilioRequestDuration)

	prometheus.MustRegister(SubscribersActive)
	prometheus.MustRegister(WebhookMessagesTotal)

	prometheus.MustRegister(prometheus.NewGoCollector())
	prometheus.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
}
