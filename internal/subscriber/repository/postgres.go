package repository

import (
	"context"
	"database/sql"

	"tradel/internal/subscriber"
)

type PostgresSubscriberRepository struct {
	db *sql.DB
}

func NewPostgresSubscriberRepository(db *sql.DB) *PostgresSubscriberRepository {
	return &PostgresSubscriberRepository{db: db}
}

const subscriberColumns = `id, name, phone, country, status, push_token, alerts_received, created_at, activated_at, expires_at`

func (r *PostgresSubscriberRepository) Create(ctx context.Context, s *subscriber.Subscriber) error {
	query := `INSERT INTO subscribers (id, name, phone, country, status, push_token, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Phone, s.Country, s.Status, s.PushToken, s.CreatedAt)
	return err
}

func (r *PostgresSubscriberRepository) Update(ctx context.Context, s *subscriber.Subscriber) error {
	query := `UPDATE subscribers
	          SET name = $2, phone = $3, country = $4, status = $5, push_token = $6,
	              alerts_received = $7, activated_at = $8, expires_at = $9
	          WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Phone, s.Country, s.Status, s.PushToken,
		s.AlertsReceived, s.ActivatedAt, s.ExpiresAt)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PostgresSubscriberRepository) GetByID(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresSubscriberRepository) GetByPhone(ctx context.Context, phone string) (*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE phone = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, phone))
}

func (r *PostgresSubscriberRepository) ListActive(ctx context.Context) ([]*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers
	          WHERE status = 'active' ORDER BY created_at, id`
	return r.list(ctx, query)
}

func (r *PostgresSubscriberRepository) List(ctx context.Context) ([]*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers ORDER BY created_at, id`
	return r.list(ctx, query)
}

func (r *PostgresSubscriberRepository) list(ctx context.Context, query string) ([]*subscriber.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*subscriber.Subscriber
	for rows.Next() {
		s := &subscriber.Subscriber{}
		var pushToken sql.NullString
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Phone, &s.Country, &s.Status, &pushToken,
			&s.AlertsReceived, &s.CreatedAt, &s.ActivatedAt, &s.ExpiresAt,
		); err != nil {
			return nil, err
		}
		s.PushToken = pushToken.String
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *PostgresSubscriberRepository) scanOne(row *sql.Row) (*subscriber.Subscriber, error) {
	s := &subscriber.Subscriber{}
	var pushToken sql.NullString
	err := row.Scan(
		&s.ID, &s.Name, &s.Phone, &s.Country, &s.Status, &pushToken,
		&s.AlertsReceived, &s.CreatedAt, &s.ActivatedAt, &s.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	s.PushToken = pushToken.String
	return s, nil
}
