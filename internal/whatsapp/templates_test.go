package whatsapp

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradel/internal/config"
	"tradel/internal/payment"
	"tradel/internal/signal"
	"tradel/internal/subscriber"
)

func TestFormatAlert(t *testing.T) {
	sig := &signal.Signal{
		Pair:       "BTC",
		Action:     "BUY",
		Entry:      "67450",
		TP:         "68200",
		SL:         "66900",
		Message:    "BUY BTCUSD now",
		ReceivedAt: time.Date(2024, 3, 14, 15, 2, 0, 0, time.UTC),
	}

	text := FormatAlert(sig)
	for _, want := range []string{"TradeL Alert", "BTC", "🟢", "67450", "68200", "66900", "2024-03-14 15:02"} {
		if !strings.Contains(text, want) {
			t.Fatalf("alert missing %q:\n%s", want, text)
		}
	}
}

func TestFormatAlertDefaultsToNA(t *testing.T) {
	text := FormatAlert(&signal.Signal{Message: "SIGNAL incoming", Entry: "N/A", TP: "N/A", SL: "N/A"})
	if !strings.Contains(text, "*Pair:*   N/A") {
		t.Fatalf("missing pair placeholder:\n%s", text)
	}
	if strings.Contains(text, "🟢") || strings.Contains(text, "🔴") {
		t.Fatalf("no action should mean neutral marker:\n%s", text)
	}
}

func TestFormatWelcome(t *testing.T) {
	expires := time.Date(2024, 4, 13, 0, 0, 0, 0, time.UTC)
	sub := &subscriber.Subscriber{
		Name:      "Ada",
		CreatedAt: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		ExpiresAt: &expires,
	}

	text := FormatWelcome(sub)
	for _, want := range []string{"Ada", "ACTIVE", "2024-03-14", "2024-04-13", "STOP"} {
		if !strings.Contains(text, want) {
			t.Fatalf("welcome missing %q:\n%s", want, text)
		}
	}
}

func TestFormatPaymentRequest(t *testing.T) {
	sub := &subscriber.Subscriber{Name: "Ada"}
	p := &payment.Payment{
		Reference: "TRADEL031415022222",
		Amount:    decimal.NewFromInt(5000),
	}
	bank := config.BankDetails{Bank: "GTBank", AccountName: "TradeL Signals", AccountNumber: "0123456789"}

	text := FormatPaymentRequest(sub, p, bank)
	for _, want := range []string{"TRADEL031415022222", "₦5000", "GTBank", "TradeL Signals", "0123456789"} {
		if !strings.Contains(text, want) {
			t.Fatalf("payment request missing %q:\n%s", want, text)
		}
	}
}

func TestFormatRenewalReminder(t *testing.T) {
	text := FormatRenewalReminder(&subscriber.Subscriber{Name: "Ada"}, 3)
	if !strings.Contains(text, "Ada") || !strings.Contains(text, "3 day(s)") || !strings.Contains(text, "RENEW") {
		t.Fatalf("unexpected reminder:\n%s", text)
	}
}
