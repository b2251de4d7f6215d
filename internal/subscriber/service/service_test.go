package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"tradel/internal/subscriber"
)

// memRepo is an in-memory subscriber.Repository preserving insertion order.
type memRepo struct {
	mu   sync.Mutex
	subs []*subscriber.Subscriber

	failList bool
}

func (r *memRepo) Create(ctx context.Context, s *subscriber.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.subs = append(r.subs, &cp)
	return nil
}

func (r *memRepo) Update(ctx context.Context, s *subscriber.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.subs {
		if existing.ID == s.ID {
			cp := *s
			r.subs[i] = &cp
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memRepo) GetByPhone(ctx context.Context, phone string) (*subscriber.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.Phone == phone {
			cp := *s
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memRepo) ListActive(ctx context.Context) ([]*subscriber.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList {
		return nil, errors.New("storage unreadable")
	}
	var out []*subscriber.Subscriber
	for _, s := range r.subs {
		if s.Status == subscriber.StatusActive {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepo) List(ctx context.Context) ([]*subscriber.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*subscriber.Subscriber
	for _, s := range r.subs {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func newRegistry() (*Registry, *memRepo) {
	repo := &memRepo{}
	return NewRegistry(repo, "234"), repo
}

func TestRegisterAssignsDistinctIDs(t *testing.T) {
	registry, _ := newRegistry()
	ctx := context.Background()

	first, err := registry.Register(ctx, "Ada", "08011112222", "NG")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	second, err := registry.Register(ctx, "Bayo", "08033334444", "NG")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, both %q", first.ID)
	}
	if first.Status != subscriber.StatusPending {
		t.Fatalf("expected pending status, got %q", first.Status)
	}
	if first.Phone != "2348011112222" {
		t.Fatalf("expected normalized phone, got %q", first.Phone)
	}
}

func TestRegisterDuplicatePhoneFails(t *testing.T) {
	registry, _ := newRegistry()
	ctx := context.Background()

	if _, err := registry.Register(ctx, "Ada", "08011112222", "NG"); err != nil {
		t.Fatalf("register: %v", err)
	}
	// same number in a different input format
	_, err := registry.Register(ctx, "Imposter", "+2348011112222", "NG")
	if !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}
}

func TestRegisterEmptyPhoneFails(t *testing.T) {
	registry, _ := newRegistry()

	_, err := registry.Register(context.Background(), "Ada", "", "NG")
	if !errors.Is(err, subscriber.ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
}

func TestActivateIsIdempotent(t *testing.T) {
	registry, _ := newRegistry()
	ctx := context.Background()

	sub, err := registry.Register(ctx, "Ada", "08011112222", "NG")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	first, err := registry.Activate(ctx, sub.ID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if first.Status != subscriber.StatusActive || first.ActivatedAt == nil {
		t.Fatalf("expected active with ActivatedAt set, got %+v", first)
	}

	second, err := registry.Activate(ctx, sub.ID)
	if err != nil {
		t.Fatalf("second activate: %v", err)
	}
	if !second.ActivatedAt.Equal(*first.ActivatedAt) {
		t.Fatalf("second activate must be a no-op: ActivatedAt changed from %v to %v",
			first.ActivatedAt, second.ActivatedAt)
	}
}

func TestActivateUnknownID(t *testing.T) {
	registry, _ := newRegistry()

	_, err := registry.Activate(context.Background(), "TR00000000000000")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListActiveExcludesPendingAndExpired(t *testing.T) {
	registry, _ := newRegistry()
	ctx := context.Background()

	pending, _ := registry.Register(ctx, "Pending", "08011110001", "NG")
	active, _ := registry.Register(ctx, "Active", "08011110002", "NG")
	stopped, _ := registry.Register(ctx, "Stopped", "08011110003", "NG")

	if _, err := registry.Activate(ctx, active.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := registry.Activate(ctx, stopped.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := registry.Deactivate(ctx, stopped.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	got, err := registry.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(got) != 1 || got[0].ID != active.ID {
		t.Fatalf("expected only %s active, got %+v", active.ID, got)
	}
	_ = pending
}

func TestConcurrentRegisterSamePhone(t *testing.T) {
	registry, _ := newRegistry()
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = registry.Register(ctx, "Ada", "08011112222", "NG")
		}(i)
	}
	wg.Wait()

	succeeded, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrPhoneTaken):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || conflicts != callers-1 {
		t.Fatalf("expected exactly one success, got %d successes, %d conflicts", succeeded, conflicts)
	}
}

func TestExpireOverdue(t *testing.T) {
	registry, repo := newRegistry()
	ctx := context.Background()

	overdue, _ := registry.Register(ctx, "Overdue", "08011110001", "NG")
	current, _ := registry.Register(ctx, "Current", "08011110002", "NG")
	registry.Activate(ctx, overdue.ID)
	registry.Activate(ctx, current.ID)

	// push the first subscriber's expiry into the past
	repo.mu.Lock()
	past := time.Now().UTC().Add(-24 * time.Hour)
	for _, s := range repo.subs {
		if s.ID == overdue.ID {
			s.ExpiresAt = &past
		}
	}
	repo.mu.Unlock()

	expired, err := registry.ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("expire overdue: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired, got %d", expired)
	}

	got, _ := registry.Get(ctx, overdue.ID)
	if got.Status != subscriber.StatusExpired {
		t.Fatalf("expected expired status, got %q", got.Status)
	}
	still, _ := registry.Get(ctx, current.ID)
	if still.Status != subscriber.StatusActive {
		t.Fatalf("expected current subscriber to stay active, got %q", still.Status)
	}
}
