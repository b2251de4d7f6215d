package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"tradel/internal/signal"
)

const oneSignalURL = "https://onesignal.com/api/v1/notifications"

// Client sends high-priority push notifications via OneSignal so a signal
// can ring the phone even on silent. Entirely optional: a zero-configured
// client skips every call.
type Client struct {
	appID  string
	apiKey string
	url    string

	HTTPClient *http.Client
}

func NewClient(appID, apiKey string) *Client {
	return &Client{
		appID:      appID,
		apiKey:     apiKey,
		url:        oneSignalURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.appID != "" && c.apiKey != ""
}

// SetURL points the client at a different endpoint. Used by tests.
func (c *Client) SetURL(u string) {
	c.url = u
}

// Notify sends a phone-alarm push for a trading signal to one push token.
func (c *Client) Notify(ctx context.Context, pushToken string, sig *signal.Signal) error {
	if !c.Configured() {
		return nil
	}

	title := "🚨 TradeL Alert"
	if sig.Action != "" && sig.Pair != "" {
		title = fmt.Sprintf("🚨 TradeL: %s %s", sig.Action, sig.Pair)
	}
	body := sig.Message
	if body == "" {
		body = "New trading signal detected!"
	}
	if len(body) > 200 {
		body = body[:200]
	}

	payload := map[string]interface{}{
		"app_id":             c.appID,
		"include_player_ids": []string{pushToken},
		"headings":           map[string]string{"en": title},
		"contents":           map[string]string{"en": body},
		"data":               sig,
		// High-priority settings so the phone rings
		"priority":           10,
		"ios_sound":          "alarm.caf",
		"android_sound":      "alarm",
		"android_channel_id": "trade_alerts",
		"android_led_color":  "FFFF0000",
		"android_visibility": 1,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("onesignal request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	var result struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(respBody, &result)

	if resp.StatusCode != http.StatusOK || result.ID == "" {
		return fmt.Errorf("onesignal status %d: %s", resp.StatusCode, respBody)
	}

	log.Printf("Push sent | id: %s", result.ID)
	return nil
}
