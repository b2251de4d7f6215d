package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tradel/internal/config"
	"tradel/internal/dispatch"
	"tradel/internal/payment"
	"tradel/internal/signal"
	"tradel/internal/signal/repository"
	"tradel/internal/subscriber"
	"tradel/internal/whatsapp"
)

type Registry interface {
	ListActive(ctx context.Context) ([]*subscriber.Subscriber, error)
	GetByPhone(ctx context.Context, phone string) (*subscriber.Subscriber, error)
	Deactivate(ctx context.Context, id string) (*subscriber.Subscriber, error)
	RecordAlert(ctx context.Context, id string) error
}

type Broadcaster interface {
	Broadcast(ctx context.Context, text string) (*dispatch.Report, error)
}

type Pusher interface {
	Notify(ctx context.Context, pushToken string, sig *signal.Signal) error
}

type PaymentTracker interface {
	RecordPending(ctx context.Context, subscriberID string, amount decimal.Decimal, currency string) (*payment.Payment, error)
}

// Service processes trading signals end to end: journal the signal, fan the
// alert out over WhatsApp, ring phones that registered a push token, and
// handle the few inbound keywords subscribers can send back.
type Service struct {
	repo      repository.SignalRepository
	registry  Registry
	bcast     Broadcaster
	pusher    Pusher
	tracker   PaymentTracker
	transport dispatch.Transport
	cfg       *config.Config

	mu     sync.Mutex
	lastID string
	seq    int
}

func NewService(
	repo repository.SignalRepository,
	registry Registry,
	bcast Broadcaster,
	pusher Pusher,
	tracker PaymentTracker,
	transport dispatch.Transport,
	cfg *config.Config,
) *Service {
	return &Service{
		repo:      repo,
		registry:  registry,
		bcast:     bcast,
		pusher:    pusher,
		tracker:   tracker,
		transport: transport,
		cfg:       cfg,
	}
}

// Process journals a signal and dispatches alerts for it. The dispatch
// report carries the per-recipient outcomes; journaling failure is fatal,
// push failure is not.
func (s *Service) Process(ctx context.Context, sig *signal.Signal) (*dispatch.Report, error) {
	sig.ID = s.nextID()
	if sig.ReceivedAt.IsZero() {
		sig.ReceivedAt = time.Now().UTC()
	}

	if err := s.repo.Save(ctx, sig); err != nil {
		return nil, fmt.Errorf("journal signal: %w", err)
	}
	log.Printf("Signal detected: %s | %.60s", sig.ID, sig.Message)

	report, err := s.bcast.Broadcast(ctx, whatsapp.FormatAlert(sig))
	if err != nil {
		return nil, err
	}

	s.afterBroadcast(ctx, sig, report)
	return report, nil
}

// afterBroadcast rings phones and bumps alert counters for recipients that
// got the message. Best effort only.
func (s *Service) afterBroadcast(ctx context.Context, sig *signal.Signal, report *dispatch.Report) {
	subs, err := s.registry.ListActive(ctx)
	if err != nil {
		log.Printf("Post-broadcast pass skipped: %v", err)
		return
	}
	byID := make(map[string]*subscriber.Subscriber, len(subs))
	for _, sub := range subs {
		byID[sub.ID] = sub
	}

	for _, res := range report.Results {
		if !res.Delivered() {
			continue
		}
		sub := byID[res.SubscriberID]
		if sub == nil {
			continue
		}
		if sub.PushToken != "" && s.pusher != nil {
			if err := s.pusher.Notify(ctx, sub.PushToken, sig); err != nil {
				log.Printf("Push failed for %s: %v", sub.ID, err)
			}
		}
		if err := s.registry.RecordAlert(ctx, sub.ID); err != nil {
			log.Printf("Alert counter update failed for %s: %v", sub.ID, err)
		}
	}
}

// HandleInbound is the entry point for provider-originated messages. It
// returns the reply to send back to the sender, or "" for no reply.
func (s *Service) HandleInbound(ctx context.Context, from, text string) (string, error) {
	if signal.IsTradingSignal(text) {
		sig := signal.Extract(text)
		if _, err := s.Process(ctx, sig); err != nil {
			return "", err
		}
		return "", nil
	}

	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "STOP":
		return s.handleStop(ctx, from)
	case "RENEW":
		return s.handleRenew(ctx, from)
	}
	return "", nil
}

func (s *Service) handleStop(ctx context.Context, from string) (string, error) {
	sub, err := s.registry.GetByPhone(ctx, stripProviderPrefix(from))
	if err != nil {
		return "", nil // unknown sender, nothing to pause
	}
	if _, err := s.registry.Deactivate(ctx, sub.ID); err != nil {
		return "", err
	}
	return "Alerts paused. Reply RENEW any time to come back. — TradeL", nil
}

func (s *Service) handleRenew(ctx context.Context, from string) (string, error) {
	sub, err := s.registry.GetByPhone(ctx, stripProviderPrefix(from))
	if err != nil {
		return "", nil
	}
	p, err := s.tracker.RecordPending(ctx, sub.ID, s.cfg.MonthlyPrice, s.cfg.Currency)
	if err != nil {
		return "", err
	}
	return whatsapp.FormatPaymentRequest(sub, p, s.cfg.Bank), nil
}

// RemindExpiring sends a renewal reminder to every active subscriber whose
// expiry is within withinDays days. Returns how many reminders went out.
func (s *Service) RemindExpiring(ctx context.Context, withinDays int) (int, error) {
	subs, err := s.registry.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active: %w", err)
	}

	now := time.Now().UTC()
	reminded := 0
	for _, sub := range subs {
		if sub.ExpiresAt == nil {
			continue
		}
		daysLeft := int(sub.ExpiresAt.Sub(now).Hours() / 24)
		if daysLeft < 0 || daysLeft > withinDays {
			continue
		}
		text := whatsapp.FormatRenewalReminder(sub, daysLeft)
		if err := s.transport.Send(ctx, sub.Phone, text); err != nil {
			log.Printf("Reminder failed for %s: %v", sub.ID, err)
			continue
		}
		log.Printf("Renewal reminder sent to %s (%dd left)", sub.Name, daysLeft)
		reminded++
	}
	log.Printf("Sent %d renewal reminder(s)", reminded)
	return reminded, nil
}

// stripProviderPrefix turns "whatsapp:+2348011112222" into "+2348011112222".
func stripProviderPrefix(from string) string {
	return strings.TrimPrefix(from, "whatsapp:")
}

// nextID generates ids like SIG20240314150233, suffixed when several signals
// land in the same second.
func (s *Service) nextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := "SIG" + time.Now().UTC().Format("20060102150405")
	if id == s.lastID {
		s.seq++
		return fmt.Sprintf("%s%02d", id, s.seq)
	}
	s.lastID = id
	s.seq = 0
	return id
}
