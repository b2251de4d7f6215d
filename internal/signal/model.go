package signal

import "time"

type Signal struct {
	ID         string    `db:"id" json:"id"`
	Source     string    `db:"source" json:"source"` // whatsapp, test, manual
	Pair       string    `db:"pair" json:"pair"`
	Action     string    `db:"action" json:"action"` // BUY, SELL or empty
	Entry      string    `db:"entry" json:"entry"`
	TP         string    `db:"tp" json:"tp"`
	SL         string    `db:"sl" json:"sl"`
	Message    string    `db:"message" json:"message"`
	Priority   string    `db:"priority" json:"priority"` // high, medium
	ReceivedAt time.Time `db:"received_at" json:"received_at"`
}
