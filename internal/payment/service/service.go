package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"tradel/internal/payment"
	"tradel/internal/subscriber"
)

var (
	ErrNotFound = errors.New("payment not found")
	// Confirming twice is a financial integrity issue, not a harmless retry.
	ErrAlreadyConfirmed = errors.New("payment already confirmed")
)

type PaymentRepository interface {
	Create(ctx context.Context, p *payment.Payment) error
	GetByID(ctx context.Context, id int64) (*payment.Payment, error)
	GetByReference(ctx context.Context, reference string) (*payment.Payment, error)
	Confirm(ctx context.Context, id int64, confirmedAt time.Time) (bool, error)
	ListByStatus(ctx context.Context, status string) ([]*payment.Payment, error)
}

// Registry is the subset of the subscriber registry the tracker needs. It
// reads subscriber records and requests activation through the registry's
// public operation; it never mutates them directly.
type Registry interface {
	Get(ctx context.Context, id string) (*subscriber.Subscriber, error)
	Activate(ctx context.Context, id string) (*subscriber.Subscriber, error)
}

type Summary struct {
	Count    int                `json:"count"`
	Total    decimal.Decimal    `json:"total"`
	Payments []*payment.Payment `json:"payments"`
}

type Tracker struct {
	repo     PaymentRepository
	registry Registry
}

func NewTracker(repo PaymentRepository, registry Registry) *Tracker {
	return &Tracker{repo: repo, registry: registry}
}

// RecordPending appends a pending payment for a known subscriber. The
// generated reference goes into the bank-transfer narration so the operator
// can match the transfer by hand.
func (t *Tracker) RecordPending(ctx context.Context, subscriberID string, amount decimal.Decimal, currency string) (*payment.Payment, error) {
	sub, err := t.registry.Get(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	p := &payment.Payment{
		SubscriberID: sub.ID,
		Reference:    generateReference(sub.Phone),
		Amount:       amount,
		Currency:     currency,
		Status:       payment.StatusPending,
		RecordedAt:   time.Now().UTC(),
	}

	if err := t.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("persist payment: %w", err)
	}

	log.Printf("Pending payment %s for %s: %s %s", p.Reference, sub.ID, p.Amount, p.Currency)
	return p, nil
}

// Confirm marks a pending payment confirmed and activates its subscriber.
func (t *Tracker) Confirm(ctx context.Context, paymentID int64) (*payment.Payment, error) {
	p, err := t.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	confirmedAt := time.Now().UTC()
	ok, err := t.repo.Confirm(ctx, p.ID, confirmedAt)
	if err != nil {
		return nil, fmt.Errorf("persist confirmation: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyConfirmed
	}
	p.Status = payment.StatusConfirmed
	p.ConfirmedAt = &confirmedAt

	if _, err := t.registry.Activate(ctx, p.SubscriberID); err != nil {
		return nil, fmt.Errorf("activate subscriber %s: %w", p.SubscriberID, err)
	}

	log.Printf("Payment confirmed: %s", p.Reference)
	return p, nil
}

// ConfirmByReference is the operator console path: the bank narration is
// what the operator sees.
func (t *Tracker) ConfirmByReference(ctx context.Context, reference string) (*payment.Payment, error) {
	p, err := t.repo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t.Confirm(ctx, p.ID)
}

func (t *Tracker) PendingSummary(ctx context.Context) (*Summary, error) {
	return t.summary(ctx, payment.StatusPending)
}

func (t *Tracker) ConfirmedSummary(ctx context.Context) (*Summary, error) {
	return t.summary(ctx, payment.StatusConfirmed)
}

func (t *Tracker) summary(ctx context.Context, status string) (*Summary, error) {
	payments, err := t.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return &Summary{Count: len(payments), Total: total, Payments: payments}, nil
}

// generateReference creates a bank narration like TRADEL031415022222.
func generateReference(phone string) string {
	last4 := phone
	if len(phone) > 4 {
		last4 = phone[len(phone)-4:]
	}
	return "TRADEL" + time.Now().UTC().Format("01021504") + last4
}
