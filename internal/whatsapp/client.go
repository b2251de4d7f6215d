package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"tradel/internal/dispatch"
	"tradel/internal/metrics"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

// Client sends WhatsApp messages through the Twilio REST API. It implements
// dispatch.Transport; addresses are normalized digits-only phone numbers.
type Client struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string

	HTTPClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

func NewClient(accountSID, authToken, from string) *Client {
	c := &Client{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    twilioBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "twilio-api",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker '%s' changed from %s to %s", name, from, to)
		},
	})

	return c
}

// SetBaseURL points the client at a different endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

type twilioResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send delivers one message to one WhatsApp address. A 4xx from Twilio means
// the recipient was rejected; everything else non-2xx is a transport error.
func (c *Client) Send(ctx context.Context, address, text string) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.send(ctx, address, text)
	})
	return err
}

func (c *Client) send(ctx context.Context, address, text string) error {
	form := url.Values{}
	form.Set("From", c.from)
	form.Set("To", "whatsapp:+"+address)
	form.Set("Body", text)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	metrics.TwilioRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TwilioRequestsTotal.WithLabelValues("error").Inc()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read twilio response: %w", err)
	}

	var tr twilioResponse
	if err := json.Unmarshal(body, &tr); err != nil && resp.StatusCode < 300 {
		return fmt.Errorf("decode twilio response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		metrics.TwilioRequestsTotal.WithLabelValues("ok").Inc()
		log.Printf("Message sent to whatsapp:+%s | SID: %s", address, tr.SID)
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		metrics.TwilioRequestsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("%w: %s", dispatch.ErrRejected, tr.Message)
	default:
		metrics.TwilioRequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("twilio status %d: %s", resp.StatusCode, tr.Message)
	}
}
