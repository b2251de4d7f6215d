package signal

import "testing"

func TestIsTradingSignal(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"buy with pair", "BUY BTCUSD now", true},
		{"lowercase sell with level", "sell gold, tp: 2410.5", true},
		{"entry and numbers", "ENTRY 1.0850 SL 1.0820", true},
		{"keyword without pair or number", "strong buy vibes today", false},
		{"pair without keyword", "BTC is moving", false},
		{"plain chat", "good morning everyone", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTradingSignal(tc.text); got != tc.want {
				t.Fatalf("IsTradingSignal(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	sig := Extract("BUY BTCUSD Entry: 67450 TP: 68200 SL: 66900")

	if sig.Action != "BUY" {
		t.Fatalf("action = %q, want BUY", sig.Action)
	}
	if sig.Pair != "BTC" {
		t.Fatalf("pair = %q, want BTC", sig.Pair)
	}
	if sig.Entry != "67450" || sig.TP != "68200" || sig.SL != "66900" {
		t.Fatalf("levels = %q/%q/%q", sig.Entry, sig.TP, sig.SL)
	}
	if sig.Priority != "high" {
		t.Fatalf("priority = %q, want high", sig.Priority)
	}
	if sig.Source != "whatsapp" {
		t.Fatalf("source = %q", sig.Source)
	}
}

func TestExtractShortMapsToSell(t *testing.T) {
	sig := Extract("short eurusd at 1.0850")

	if sig.Action != "SELL" {
		t.Fatalf("action = %q, want SELL", sig.Action)
	}
	if sig.Pair == "" {
		t.Fatal("expected a pair to be detected")
	}
}

func TestExtractMissingLevels(t *testing.T) {
	sig := Extract("SIGNAL: watch GOLD this session")

	if sig.Action != "" {
		t.Fatalf("action = %q, want empty", sig.Action)
	}
	if sig.Entry != "N/A" || sig.TP != "N/A" || sig.SL != "N/A" {
		t.Fatalf("levels = %q/%q/%q, want N/A", sig.Entry, sig.TP, sig.SL)
	}
	if sig.Priority != "medium" {
		t.Fatalf("priority = %q, want medium", sig.Priority)
	}
}
