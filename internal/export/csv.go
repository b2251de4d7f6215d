package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"tradel/internal/subscriber"
)

var csvHeader = []string{
	"Date", "ID", "Name", "Phone", "Country",
	"Status", "Joined", "Activated", "Expiry", "Alerts",
}

// Subscribers writes the registry as CSV, one row per subscriber.
func Subscribers(w io.Writer, subs []*subscriber.Subscriber, now time.Time) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	today := now.Format("2006-01-02")
	for _, s := range subs {
		row := []string{
			today,
			s.ID,
			s.Name,
			s.Phone,
			s.Country,
			s.Status,
			s.CreatedAt.Format("2006-01-02"),
			formatDate(s.ActivatedAt),
			formatDate(s.ExpiresAt),
			strconv.Itoa(s.AlertsReceived),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", s.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
