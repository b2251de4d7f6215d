package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tradel/internal/metrics"
	"tradel/internal/subscriber"
)

var (
	ErrNotFound   = errors.New("subscriber not found")
	ErrPhoneTaken = errors.New("phone already registered")
)

const subscriptionDays = 30

// Registry owns the subscriber lifecycle. All mutating operations are
// serialized through mu so that concurrent registrations with the same phone
// or concurrent activations cannot race the read-modify-persist sequence.
type Registry struct {
	repo          subscriber.Repository
	countryPrefix string

	mu     sync.Mutex
	lastID string
	seq    int
}

func NewRegistry(repo subscriber.Repository, countryPrefix string) *Registry {
	return &Registry{repo: repo, countryPrefix: countryPrefix}
}

func (s *Registry) Register(ctx context.Context, name, phone, country string) (*subscriber.Subscriber, error) {
	normalized, err := subscriber.NormalizePhone(phone, s.countryPrefix)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = "Trader"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.GetByPhone(ctx, normalized)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("registry lookup: %w", err)
	}
	if existing != nil {
		return nil, ErrPhoneTaken
	}

	sub := &subscriber.Subscriber{
		ID:        s.nextID(),
		Name:      name,
		Phone:     normalized,
		Country:   country,
		Status:    subscriber.StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("persist subscriber: %w", err)
	}

	log.Printf("Registered subscriber %s (%s)", sub.ID, sub.Name)
	return sub, nil
}

// Activate is idempotent: activating an already-active subscriber returns the
// record unchanged.
func (s *Registry) Activate(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == subscriber.StatusActive {
		return sub, nil
	}

	now := time.Now().UTC()
	expires := now.AddDate(0, 0, subscriptionDays)
	sub.Status = subscriber.StatusActive
	sub.ActivatedAt = &now
	sub.ExpiresAt = &expires

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("persist activation: %w", err)
	}

	log.Printf("Activated subscriber %s, expires %s", sub.ID, expires.Format("2006-01-02"))
	s.refreshActiveGauge(ctx)
	return sub, nil
}

// Deactivate moves an active subscriber to expired (STOP keyword, operator
// action). Expired and pending subscribers pass through unchanged.
func (s *Registry) Deactivate(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != subscriber.StatusActive {
		return sub, nil
	}

	sub.Status = subscriber.StatusExpired
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("persist deactivation: %w", err)
	}

	log.Printf("Deactivated subscriber %s", sub.ID)
	s.refreshActiveGauge(ctx)
	return sub, nil
}

func (s *Registry) Get(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	return s.get(ctx, id)
}

func (s *Registry) GetByPhone(ctx context.Context, phone string) (*subscriber.Subscriber, error) {
	normalized, err := subscriber.NormalizePhone(phone, s.countryPrefix)
	if err != nil {
		return nil, err
	}
	sub, err := s.repo.GetByPhone(ctx, normalized)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	return sub, nil
}

// ListActive returns active subscribers in registration order, read fresh
// from the repository on every call.
func (s *Registry) ListActive(ctx context.Context) ([]*subscriber.Subscriber, error) {
	return s.repo.ListActive(ctx)
}

func (s *Registry) List(ctx context.Context) ([]*subscriber.Subscriber, error) {
	return s.repo.List(ctx)
}

func (s *Registry) SetPushToken(ctx context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	sub.PushToken = token
	return s.repo.Update(ctx, sub)
}

// RecordAlert bumps the delivered-alert counter for a subscriber. Best
// effort: dispatch outcome was already reported by the time this runs.
func (s *Registry) RecordAlert(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	sub.AlertsReceived++
	return s.repo.Update(ctx, sub)
}

// ExpireOverdue transitions active subscribers whose expiry passed to the
// expired status. It is a hook for the operator console or an admin endpoint;
// nothing in this process schedules it.
func (s *Registry) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active: %w", err)
	}

	expired := 0
	for _, sub := range active {
		if sub.ExpiresAt == nil || now.Before(*sub.ExpiresAt) {
			continue
		}
		sub.Status = subscriber.StatusExpired
		if err := s.repo.Update(ctx, sub); err != nil {
			return expired, fmt.Errorf("expire %s: %w", sub.ID, err)
		}
		log.Printf("Subscription expired: %s (%s)", sub.ID, sub.Name)
		expired++
	}
	if expired > 0 {
		s.refreshActiveGauge(ctx)
	}
	return expired, nil
}

func (s *Registry) get(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	return sub, nil
}

// nextID generates ids like TR20240314150233 with a suffix when several
// registrations land in the same second. Ids are never reused.
func (s *Registry) nextID() string {
	id := "TR" + time.Now().UTC().Format("20060102150405")
	if id == s.lastID {
		s.seq++
		return fmt.Sprintf("%s%02d", id, s.seq)
	}
	s.lastID = id
	s.seq = 0
	return id
}

func (s *Registry) refreshActiveGauge(ctx context.Context) {
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return
	}
	metrics.SubscribersActive.Set(float64(len(active)))
}
