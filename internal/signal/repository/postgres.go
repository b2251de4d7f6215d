package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"tradel/internal/signal"
)

// SignalRepository is the journal of processed signals.
type SignalRepository interface {
	Save(ctx context.Context, s *signal.Signal) error
	GetByID(ctx context.Context, id string) (*signal.Signal, error)
	ListSince(ctx context.Context, since time.Time) ([]*signal.Signal, error)
}

type PostgresSignalRepo struct {
	DB *sqlx.DB
}

func NewPostgresSignalRepo(db *sqlx.DB) *PostgresSignalRepo {
	return &PostgresSignalRepo{DB: db}
}

func (r *PostgresSignalRepo) Save(ctx context.Context, s *signal.Signal) error {
	query := `
		INSERT INTO signals (id, source, pair, action, entry, tp, sl, message, priority, received_at)
		VALUES (:id, :source, :pair, :action, :entry, :tp, :sl, :message, :priority, :received_at)
	`
	_, err := r.DB.NamedExecContext(ctx, query, s)
	return err
}

func (r *PostgresSignalRepo) GetByID(ctx context.Context, id string) (*signal.Signal, error) {
	s := &signal.Signal{}
	query := `
		SELECT id, source, pair, action, entry, tp, sl, message, priority, received_at
		FROM signals WHERE id = $1
	`
	if err := r.DB.GetContext(ctx, s, query, id); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresSignalRepo) ListSince(ctx context.Context, since time.Time) ([]*signal.Signal, error) {
	var signals []*signal.Signal
	query := `
		SELECT id, source, pair, action, entry, tp, sl, message, priority, received_at
		FROM signals WHERE received_at >= $1 ORDER BY received_at
	`
	if err := r.DB.SelectContext(ctx, &signals, query, since); err != nil {
		return nil, err
	}
	return signals, nil
}
