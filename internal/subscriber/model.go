package subscriber

import "time"

const (
	StatusPending = "pending"
	StatusActive  = "active"
	StatusExpired = "expired"
)

type Subscriber struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"` // normalized, digits only with country code
	Country        string     `json:"country"`
	Status         string     `json:"status"`
	PushToken      string     `json:"push_token,omitempty"`
	AlertsReceived int        `json:"alerts_received"`
	CreatedAt      time.Time  `json:"created_at"`
	ActivatedAt    *time.Time `json:"activated_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

func (s *Subscriber) IsActive() bool {
	return s.Status == StatusActive
}
