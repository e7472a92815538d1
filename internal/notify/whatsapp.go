package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Notifier delivers a message to a phone number over WhatsApp.
type Notifier interface {
	Send(ctx context.Context, target, message string) error
}

// FonnteClient sends WhatsApp messages through the Fonnte HTTP gateway.
type FonnteClient struct {
	apiURL string
	token  string
	client *http.Client
}

// NewFonnteClient constructs a client for the Fonnte send endpoint.
func NewFonnteClient(apiURL, token string, timeout time.Duration) *FonnteClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &FonnteClient{
		apiURL: apiURL,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

// Send posts a single message. A non-2xx response is an error; the caller
// decides whether delivery failure is fatal.
func (c *FonnteClient) Send(ctx context.Context, target, message string) error {
	form := url.Values{}
	form.Set("target", NormalizePhone(target))
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// NormalizePhone rewrites a local Indonesian number to the 62 country
// prefix the gateway expects and strips formatting characters.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		return "62" + digits[1:]
	}
	return digits
}
