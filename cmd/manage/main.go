// cmd/manage/main.go
//
// Operator console. Run with one of:
//
//	manage -dashboard
//	manage -pending
//	manage -activate TR20240314150233
//	manage -confirm TRADEL031415022222
//	manage -remind
//	manage -export subscribers.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"tradel/internal/config"
	"tradel/internal/dispatch"
	"tradel/internal/export"
	paymentrepository "tradel/internal/payment/repository"
	paymentservice "tradel/internal/payment/service"
	"tradel/internal/push"
	signalrepository "tradel/internal/signal/repository"
	signalservice "tradel/internal/signal/service"
	"tradel/internal/subscriber"
	subscriberrepository "tradel/internal/subscriber/repository"
	subscriberservice "tradel/internal/subscriber/service"
	"tradel/internal/whatsapp"
	"tradel/pkg/db"
)

func main() {
	var (
		dashboard  = flag.Bool("dashboard", false, "print the management dashboard")
		pending    = flag.Bool("pending", false, "list pending payments")
		activateID = flag.String("activate", "", "activate a subscriber by id")
		confirmRef = flag.String("confirm", "", "confirm a payment by bank reference")
		remind     = flag.Bool("remind", false, "send renewal reminders (3 days or fewer left)")
		exportPath = flag.String("export", "", "export subscribers to a CSV file")
		sweep      = flag.Bool("sweep", false, "expire overdue subscriptions")
	)
	flag.Parse()

	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	subRepo := subscriberrepository.NewPostgresSubscriberRepository(database)
	registry := subscriberservice.NewRegistry(subRepo, cfg.CountryPrefix)
	transport := whatsapp.NewClient(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom)
	dispatcher := dispatch.NewDispatcher(registry, transport)
	pusher := push.NewClient(cfg.OneSignalAppID, cfg.OneSignalAPIKey)
	payRepo := paymentrepository.NewPostgresPaymentRepository(database)
	tracker := paymentservice.NewTracker(payRepo, registry)
	sigRepo := signalrepository.NewPostgresSignalRepo(db.Wrap(database))
	signals := signalservice.NewService(sigRepo, registry, dispatcher, pusher, tracker, transport, cfg)

	ctx := context.Background()

	switch {
	case *dashboard:
		printDashboard(ctx, cfg, registry, tracker)
	case *pending:
		listPending(ctx, tracker)
	case *activateID != "":
		activate(ctx, registry, transport, *activateID)
	case *confirmRef != "":
		confirm(ctx, tracker, *confirmRef)
	case *remind:
		if _, err := signals.RemindExpiring(ctx, 3); err != nil {
			log.Fatalf("Reminders failed: %v", err)
		}
	case *exportPath != "":
		exportCSV(ctx, registry, *exportPath)
	case *sweep:
		expired, err := registry.ExpireOverdue(ctx, time.Now().UTC())
		if err != nil {
			log.Fatalf("Sweep failed: %v", err)
		}
		fmt.Printf("Expired %d subscription(s)\n", expired)
	default:
		flag.Usage()
	}
}

func printDashboard(ctx context.Context, cfg *config.Config, registry *subscriberservice.Registry, tracker *paymentservice.Tracker) {
	subs, err := registry.List(ctx)
	if err != nil {
		log.Fatalf("List subscribers failed: %v", err)
	}

	var active, pendingSubs, expired []*subscriber.Subscriber
	for _, s := range subs {
		switch s.Status {
		case subscriber.StatusActive:
			active = append(active, s)
		case subscriber.StatusPending:
			pendingSubs = append(pendingSubs, s)
		default:
			expired = append(expired, s)
		}
	}

	pendingSummary, err := tracker.PendingSummary(ctx)
	if err != nil {
		log.Fatalf("Pending summary failed: %v", err)
	}
	confirmedSummary, err := tracker.ConfirmedSummary(ctx)
	if err != nil {
		log.Fatalf("Confirmed summary failed: %v", err)
	}

	now := time.Now().UTC()
	fmt.Println("=== TRADEL MANAGEMENT DASHBOARD ===")
	fmt.Printf("Date: %s\n\n", now.Format("02 Jan 2006 15:04"))

	fmt.Println("USER SUMMARY")
	fmt.Printf("  Total registered : %d\n", len(subs))
	fmt.Printf("  Active (paid)    : %d\n", len(active))
	fmt.Printf("  Pending payment  : %d\n", len(pendingSubs))
	fmt.Printf("  Inactive/expired : %d\n\n", len(expired))

	monthly := cfg.MonthlyPrice.Mul(decimal.NewFromInt(int64(len(active))))
	fmt.Println("REVENUE SUMMARY")
	fmt.Printf("  Monthly recurring    : %s %s\n", cfg.Currency, monthly.StringFixed(0))
	fmt.Printf("  Pending (unconfirmed): %s %s\n", cfg.Currency, pendingSummary.Total.StringFixed(0))
	fmt.Printf("  All-time confirmed   : %s %s\n\n", cfg.Currency, confirmedSummary.Total.StringFixed(0))

	fmt.Printf("EXPIRING SOON (7 days)\n")
	found := false
	for _, s := range active {
		if s.ExpiresAt == nil {
			continue
		}
		daysLeft := int(s.ExpiresAt.Sub(now).Hours() / 24)
		if daysLeft > 7 {
			continue
		}
		label := fmt.Sprintf("in %d day(s)", daysLeft)
		if daysLeft <= 0 {
			label = "TODAY"
		}
		fmt.Printf("  - %s (%s) expires %s\n", s.Name, s.Phone, label)
		found = true
	}
	if !found {
		fmt.Println("  none")
	}

	fmt.Printf("\nACTIVE SUBSCRIBERS (%d)\n", len(active))
	for _, s := range active {
		expiry := "N/A"
		if s.ExpiresAt != nil {
			expiry = s.ExpiresAt.Format("2006-01-02")
		}
		fmt.Printf("  - %-20s | Expiry: %s | Alerts: %d\n", s.Name, expiry, s.AlertsReceived)
	}
}

func listPending(ctx context.Context, tracker *paymentservice.Tracker) {
	summary, err := tracker.PendingSummary(ctx)
	if err != nil {
		log.Fatalf("Pending summary failed: %v", err)
	}
	if summary.Count == 0 {
		fmt.Println("No pending payments.")
		return
	}

	fmt.Printf("PENDING PAYMENTS (%d)\n", summary.Count)
	for _, p := range summary.Payments {
		fmt.Printf("  - %s | %s %s | subscriber %s | recorded %s\n",
			p.Reference, p.Amount.StringFixed(0), p.Currency,
			p.SubscriberID, p.RecordedAt.Format("2006-01-02 15:04"))
	}
}

func activate(ctx context.Context, registry *subscriberservice.Registry, transport dispatch.Transport, id string) {
	sub, err := registry.Activate(ctx, id)
	if err != nil {
		log.Fatalf("Activate failed: %v", err)
	}
	fmt.Printf("Activated: %s (%s)\n", sub.Name, sub.ID)

	if err := transport.Send(ctx, sub.Phone, whatsapp.FormatWelcome(sub)); err != nil {
		log.Printf("Could not send welcome message: %v", err)
	} else {
		fmt.Println("Welcome message sent.")
	}
}

func confirm(ctx context.Context, tracker *paymentservice.Tracker, reference string) {
	p, err := tracker.ConfirmByReference(ctx, reference)
	if err != nil {
		log.Fatalf("Confirm failed: %v", err)
	}
	fmt.Printf("Payment confirmed: %s (%s %s), subscriber %s activated\n",
		p.Reference, p.Amount.StringFixed(0), p.Currency, p.SubscriberID)
}

func exportCSV(ctx context.Context, registry *subscriberservice.Registry, path string) {
	subs, err := registry.List(ctx)
	if err != nil {
		log.Fatalf("List subscribers failed: %v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("Create %s failed: %v", path, err)
	}
	defer f.Close()

	if err := export.Subscribers(f, subs, time.Now().UTC()); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	fmt.Printf("Exported %d subscriber(s) to %s\n", len(subs), path)
}
