package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"tradel/internal/subscriber"
)

func TestSubscribersCSV(t *testing.T) {
	now := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)
	activated := now.Add(-10 * 24 * time.Hour)
	expires := activated.AddDate(0, 0, 30)

	subs := []*subscriber.Subscriber{
		{
			ID:             "TR20240304120000",
			Name:           "Ada",
			Phone:          "2348011112222",
			Country:        "NG",
			Status:         subscriber.StatusActive,
			AlertsReceived: 7,
			CreatedAt:      activated,
			ActivatedAt:    &activated,
			ExpiresAt:      &expires,
		},
		{
			ID:        "TR20240314090000",
			Name:      "Bayo",
			Phone:     "2348033334444",
			Country:   "NG",
			Status:    subscriber.StatusPending,
			CreatedAt: now,
		},
	}

	var buf bytes.Buffer
	if err := Subscribers(&buf, subs, now); err != nil {
		t.Fatalf("export: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}

	if strings.Join(rows[0], ",") != "Date,ID,Name,Phone,Country,Status,Joined,Activated,Expiry,Alerts" {
		t.Fatalf("unexpected header: %v", rows[0])
	}

	ada := rows[1]
	if ada[1] != "TR20240304120000" || ada[5] != subscriber.StatusActive || ada[9] != "7" {
		t.Fatalf("unexpected row: %v", ada)
	}
	if ada[7] != "2024-03-04" || ada[8] != "2024-04-03" {
		t.Fatalf("unexpected dates: %v", ada)
	}

	bayo := rows[2]
	if bayo[5] != subscriber.StatusPending || bayo[7] != "" || bayo[8] != "" {
		t.Fatalf("pending row must have empty activation dates: %v", bayo)
	}
}

func TestSubscribersCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Subscribers(&buf, nil, time.Now()); err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Fatalf("expected header only, got %d lines", got)
	}
}
