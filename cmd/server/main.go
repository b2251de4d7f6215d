// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tradel/internal/config"
	"tradel/internal/dispatch"
	"tradel/internal/metrics"
	operatorservice "tradel/internal/operator/service"
	operatorhttp "tradel/internal/operator/transport/http"
	paymentrepository "tradel/internal/payment/repository"
	paymentservice "tradel/internal/payment/service"
	paymenthttp "tradel/internal/payment/transport/http"
	"tradel/internal/push"
	signalrepository "tradel/internal/signal/repository"
	signalservice "tradel/internal/signal/service"
	signalhttp "tradel/internal/signal/transport/http"
	subscriberrepository "tradel/internal/subscriber/repository"
	subscriberservice "tradel/internal/subscriber/service"
	subscriberhttp "tradel/internal/subscriber/transport/http"
	"tradel/internal/whatsapp"
	"tradel/pkg/db"
	"tradel/pkg/middleware"
)

var server *http.Server

func main() {
	log.Println("TradeL API starting...")
	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL")

	metrics.InitMetrics()

	// Wiring
	subRepo := subscriberrepository.NewPostgresSubscriberRepository(database)
	registry := subscriberservice.NewRegistry(subRepo, cfg.CountryPrefix)

	transport := whatsapp.NewClient(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom)
	dispatcher := dispatch.NewDispatcher(registry, transport)
	pusher := push.NewClient(cfg.OneSignalAppID, cfg.OneSignalAPIKey)

	payRepo := paymentrepository.NewPostgresPaymentRepository(database)
	tracker := paymentservice.NewTracker(payRepo, registry)

	sigRepo := signalrepository.NewPostgresSignalRepo(db.Wrap(database))
	signals := signalservice.NewService(sigRepo, registry, dispatcher, pusher, tracker, transport, cfg)

	operator := operatorservice.NewService(cfg.OperatorEmail, cfg.OperatorPasswordHash, cfg.JWTSecret)

	subHandler := subscriberhttp.NewHandler(registry, transport)
	payHandler := paymenthttp.NewPaymentHandler(tracker, cfg.Currency)
	sigHandler := signalhttp.NewSignalHandler(signals, dispatcher, transport)
	opHandler := operatorhttp.NewHandler(operator)

	webhookLimiter := middleware.NewRateLimiter(60, time.Minute)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/auth/login", opHandler.Login)
	r.With(webhookLimiter.Middleware).Post("/webhook/whatsapp", sigHandler.Webhook)

	// Management routes
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.JWTAuth(cfg.JWTSecret))
		pr.Use(middleware.ValidateRequest)

		pr.Post("/api/subscribers", subHandler.Register)
		pr.Get("/api/subscribers", subHandler.List)
		pr.Get("/api/subscribers/{id}", subHandler.Get)
		pr.Post("/api/subscribers/{id}/activate", subHandler.Activate)
		pr.Post("/api/subscribers/{id}/deactivate", subHandler.Deactivate)
		pr.Put("/api/subscribers/{id}/push-token", subHandler.SetPushToken)
		pr.Post("/api/subscribers/expire-sweep", subHandler.ExpireSweep)

		pr.Post("/api/payments", payHandler.RecordPending)
		pr.Post("/api/payments/{id}/confirm", payHandler.Confirm)
		pr.Get("/api/payments/pending", payHandler.PendingSummary)
		pr.Get("/api/payments/confirmed", payHandler.ConfirmedSummary)

		pr.Post("/api/broadcast", sigHandler.Broadcast)
		pr.Post("/api/broadcast/test", sigHandler.TestBroadcast)
		pr.Post("/api/reminders", sigHandler.Remind)
	})

	r.With(middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPass)).
		Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	server = &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	log.Printf("Server running on %s", cfg.Addr)
	log.Printf("Webhook URL: http://YOUR_SERVER_IP%s/webhook/whatsapp", cfg.Addr)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Println("Shutdown signal received, starting graceful shutdown")
		shutdownServer()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func shutdownServer() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped")
}
