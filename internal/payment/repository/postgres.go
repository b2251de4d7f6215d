package repository

import (
	"context"
	"database/sql"
	"time"

	"tradel/internal/payment"
)

type PostgresPaymentRepository struct {
	db *sql.DB
}

func NewPostgresPaymentRepository(db *sql.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

func (r *PostgresPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `INSERT INTO payments (subscriber_id, reference, amount, currency, status, recorded_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		p.SubscriberID, p.Reference, p.Amount, p.Currency, p.Status, p.RecordedAt).
		Scan(&p.ID)
}

func (r *PostgresPaymentRepository) GetByID(ctx context.Context, id int64) (*payment.Payment, error) {
	query := `SELECT id, subscriber_id, reference, amount, currency, status, recorded_at, confirmed_at
	          FROM payments WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresPaymentRepository) GetByReference(ctx context.Context, reference string) (*payment.Payment, error) {
	query := `SELECT id, subscriber_id, reference, amount, currency, status, recorded_at, confirmed_at
	          FROM payments WHERE reference = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, reference))
}

// Confirm flips a pending payment to confirmed in a single statement so a
// double confirm can never slip through between read and write.
func (r *PostgresPaymentRepository) Confirm(ctx context.Context, id int64, confirmedAt time.Time) (bool, error) {
	query := `UPDATE payments SET status = 'confirmed', confirmed_at = $2
	          WHERE id = $1 AND status = 'pending'`

	res, err := r.db.ExecContext(ctx, query, id, confirmedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresPaymentRepository) ListByStatus(ctx context.Context, status string) ([]*payment.Payment, error) {
	query := `SELECT id, subscriber_id, reference, amount, currency, status, recorded_at, confirmed_at
	          FROM payments WHERE status = $1 ORDER BY recorded_at, id`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*payment.Payment
	for rows.Next() {
		p := &payment.Payment{}
		if err := rows.Scan(
			&p.ID, &p.SubscriberID, &p.Reference, &p.Amount, &p.Currency,
			&p.Status, &p.RecordedAt, &p.ConfirmedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *PostgresPaymentRepository) scanOne(row *sql.Row) (*payment.Payment, error) {
	p := &payment.Payment{}
	err := row.Scan(
		&p.ID, &p.SubscriberID, &p.Reference, &p.Amount, &p.Currency,
		&p.Status, &p.RecordedAt, &p.ConfirmedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
