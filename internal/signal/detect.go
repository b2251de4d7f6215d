package signal

import (
	"regexp"
	"strings"
	"time"
)

var signalKeywords = []string{"BUY", "SELL", "LONG", "SHORT", "TP:", "SL:", "ENTRY", "SIGNAL"}

var tradingPairs = []string{
	"BTC", "ETH", "XRP", "SOL", "ADA", "BNB",
	"USD", "EUR", "GBP", "JPY", "XAUUSD", "GOLD",
}

var numberRe = regexp.MustCompile(`\d+\.?\d*`)

// IsTradingSignal decides whether a free-form group message looks like a
// trading signal: at least one keyword plus either a known pair or a number.
func IsTradingSignal(text string) bool {
	if text == "" {
		return false
	}
	upper := strings.ToUpper(text)

	hasKeyword := false
	for _, k := range signalKeywords {
		if strings.Contains(upper, k) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return false
	}

	for _, p := range tradingPairs {
		if strings.Contains(upper, p) {
			return true
		}
	}
	return numberRe.MatchString(text)
}

// Extract pulls pair, action and the ENTRY/TP/SL levels out of a raw message.
// Values that cannot be found come back as "N/A"; the group's format is too
// loose for stricter parsing.
func Extract(text string) *Signal {
	upper := strings.ToUpper(text)

	action := ""
	switch {
	case strings.Contains(upper, "BUY") || strings.Contains(upper, "LONG"):
		action = "BUY"
	case strings.Contains(upper, "SELL") || strings.Contains(upper, "SHORT"):
		action = "SELL"
	}

	pair := ""
	for _, p := range tradingPairs {
		if strings.Contains(upper, p) {
			pair = p
			break
		}
	}

	priority := "medium"
	if action != "" {
		priority = "high"
	}

	return &Signal{
		Source:     "whatsapp",
		Pair:       pair,
		Action:     action,
		Entry:      findValue(upper, "ENTRY"),
		TP:         findValue(upper, "TP"),
		SL:         findValue(upper, "SL"),
		Message:    text,
		Priority:   priority,
		ReceivedAt: time.Now().UTC(),
	}
}

func findValue(upper, label string) string {
	re := regexp.MustCompile(label + `[:\s]+([0-9]+\.?[0-9]*)`)
	if m := re.FindStringSubmatch(upper); m != nil {
		return m[1]
	}
	return "N/A"
}
