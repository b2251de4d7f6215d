package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// BankDetails are shown in payment request messages. The payment flow is a
// manual bank transfer: the operator checks the account and confirms by hand.
type BankDetails struct {
	Bank          string
	AccountName   string
	AccountNumber string
}

type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string // sandbox number until a dedicated WhatsApp number exists

	OneSignalAppID  string
	OneSignalAPIKey string

	OperatorEmail        string
	OperatorPasswordHash string

	MetricsUser string
	MetricsPass string

	Bank          BankDetails
	MonthlyPrice  decimal.Decimal
	Currency      string
	CountryPrefix string // prepended to local numbers starting with 0
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Addr:        getEnv("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		TwilioSID:   os.Getenv("TWILIO_SID"),
		TwilioToken: os.Getenv("TWILIO_TOKEN"),
		TwilioFrom:  getEnv("TWILIO_FROM", "whatsapp:+14155238886"),

		OneSignalAppID:  os.Getenv("ONESIGNAL_APP_ID"),
		OneSignalAPIKey: os.Getenv("ONESIGNAL_API_KEY"),

		OperatorEmail:        os.Getenv("OPERATOR_EMAIL"),
		OperatorPasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),

		MetricsUser: getEnv("METRICS_USER", "metrics"),
		MetricsPass: os.Getenv("METRICS_PASS"),

		Bank: BankDetails{
			Bank:          getEnv("BANK_NAME", "GTBank"),
			AccountName:   os.Getenv("BANK_ACCOUNT_NAME"),
			AccountNumber: os.Getenv("BANK_ACCOUNT_NUMBER"),
		},
		MonthlyPrice:  getDecimal("MONTHLY_PRICE", "5000"),
		Currency:      getEnv("CURRENCY", "NGN"),
		CountryPrefix: getEnv("COUNTRY_PREFIX", "234"),
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDecimal(key, fallback string) decimal.Decimal {
	raw := getEnv(key, fallback)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %s", key, raw, fallback)
		d, _ = decimal.NewFromString(fallback)
	}
	return d
}
