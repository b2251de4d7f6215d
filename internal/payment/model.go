package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

type Payment struct {
	ID           int64           `json:"id"`
	SubscriberID string          `json:"subscriber_id"`
	Reference    string          `json:"reference"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
	RecordedAt   time.Time       `json:"recorded_at"`
	ConfirmedAt  *time.Time      `json:"confirmed_at,omitempty"`
}
