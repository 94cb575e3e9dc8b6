package notify

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"homevia/config"
)

// Texter is the SMS-like messaging channel. The recipient number is
// already normalized to E.164 when it reaches an implementation.
type Texter interface {
	SendText(toE164, body string) error
}

// GatewayTexter posts messages to a Twilio-shaped HTTP gateway.
type GatewayTexter struct {
	gatewayURL string
	fromNumber string
	apiKey     string
	client     *http.Client
}

func NewGatewayTexter(cfg config.Config) *GatewayTexter {
	return &GatewayTexter{
		gatewayURL: cfg.SMSGatewayURL,
		fromNumber: cfg.SMSFromNumber,
		apiKey:     cfg.SMSAPIKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *GatewayTexter) SendText(toE164, body string) error {
	if t.gatewayURL == "" {
		return fmt.Errorf("sms gateway not configured")
	}

	form := url.Values{}
	form.Set("From", t.fromNumber)
	form.Set("To", toE164)
	form.Set("Body", body)

	req, err := http.NewRequest(http.MethodPost, t.gatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned %s", resp.Status)
	}
	return nil
}
