package whatsapp

import (
	"fmt"
	"strings"

	"tradel/internal/config"
	"tradel/internal/payment"
	"tradel/internal/signal"
	"tradel/internal/subscriber"
)

const divider = "──────────────────"

// FormatAlert renders a trading signal for WhatsApp delivery.
func FormatAlert(sig *signal.Signal) string {
	actionEmoji := "⚪"
	switch strings.ToUpper(sig.Action) {
	case "BUY":
		actionEmoji = "🟢"
	case "SELL":
		actionEmoji = "🔴"
	}

	var b strings.Builder
	b.WriteString("🚨 *TradeL Alert* 🚨\n")
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "*Pair:*   %s\n", orNA(sig.Pair))
	fmt.Fprintf(&b, "*Action:* %s %s\n", actionEmoji, orNA(sig.Action))
	fmt.Fprintf(&b, "*Entry:*  %s\n", sig.Entry)
	fmt.Fprintf(&b, "*TP:*     %s\n", sig.TP)
	fmt.Fprintf(&b, "*SL:*     %s\n", sig.SL)
	b.WriteString(divider + "\n")
	b.WriteString(sig.Message + "\n")
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "⏱ %s\n", sig.ReceivedAt.Format("2006-01-02 15:04"))
	b.WriteString("_TradeL – Never miss a trade._")
	return b.String()
}

// FormatWelcome is sent once a subscription becomes active.
func FormatWelcome(sub *subscriber.Subscriber) string {
	expiry := "N/A"
	if sub.ExpiresAt != nil {
		expiry = sub.ExpiresAt.Format("2006-01-02")
	}

	return fmt.Sprintf(
		"🌟 *Welcome to TradeL!* 🌟\n\n"+
			"Hello %s,\n\n"+
			"Your subscription is now *ACTIVE* ✅\n\n"+
			"*Started:* %s\n"+
			"*Expiry:*  %s\n\n"+
			"From now on, every trading signal from your group will:\n"+
			"• 📩 Be sent here instantly\n"+
			"• 📞 Ring your phone (if push enabled)\n\n"+
			"Reply *STOP* at any time to pause alerts.\n\n"+
			"Happy trading! 📈\n"+
			"*— The TradeL Team*",
		sub.Name, sub.CreatedAt.Format("2006-01-02"), expiry)
}

// FormatPaymentRequest renders manual bank-transfer instructions with the
// payment reference the operator matches against.
func FormatPaymentRequest(sub *subscriber.Subscriber, p *payment.Payment, bank config.BankDetails) string {
	amount := p.Amount.StringFixed(0)

	return fmt.Sprintf(
		"💳 *TRADEL PAYMENT REQUEST*\n\n"+
			"*Reference:* `%s`\n"+
			"*Amount:*   ₦%s\n"+
			"*For:*      %s\n\n"+
			"─────────────────────────\n"+
			"*BANK DETAILS:*\n"+
			"🏦 Bank:    %s\n"+
			"👤 Name:    %s\n"+
			"🔢 Account: %s\n"+
			"─────────────────────────\n\n"+
			"*STEPS:*\n"+
			"1️⃣  Transfer ₦%s to the account above\n"+
			"2️⃣  Use `%s` as your transfer narration/reference\n"+
			"3️⃣  Send a screenshot of your receipt here\n"+
			"4️⃣  We will activate you within 30 minutes ✅\n\n"+
			"Thank you! 🙏",
		p.Reference, amount, sub.Name,
		bank.Bank, bank.AccountName, bank.AccountNumber,
		amount, p.Reference)
}

// FormatRenewalReminder nudges a subscriber whose expiry is days away.
func FormatRenewalReminder(sub *subscriber.Subscriber, daysLeft int) string {
	return fmt.Sprintf(
		"⏰ *TradeL Renewal Reminder*\n\n"+
			"Hi %s,\n\n"+
			"Your TradeL subscription expires in *%d day(s)*.\n\n"+
			"To keep receiving alerts, please renew before your expiry date.\n"+
			"Reply *RENEW* and we'll send payment details. 🙏\n\n"+
			"*— TradeL Team*",
		sub.Name, daysLeft)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
