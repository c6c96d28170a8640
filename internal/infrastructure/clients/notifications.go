// Package clients holds thin wrappers over outbound HTTP dependencies.
package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// NotificationsClient talks to the transactional email service. With Enabled
// false every send is a silent no-op, which is how test and local
// environments run.
type NotificationsClient struct {
	client  *resty.Client
	from    string
	enabled bool
}

func NewNotificationsClient(baseURL, apiKey, from string, enabled bool) *NotificationsClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetTimeout(10 * time.Second)

	return &NotificationsClient{
		client:  client,
		from:    from,
		enabled: enabled,
	}
}

type sendEmailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendWelcome delivers the signup greeting.
func (c *NotificationsClient) SendWelcome(ctx context.Context, email, name string) error {
	if !c.enabled {
		return nil
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(sendEmailRequest{
			From:    c.from,
			To:      email,
			Subject: "Welcome to FuelLock",
			Body:    fmt.Sprintf("Hi %s, your FuelLock profile is ready.", name),
		}).
		Post("/v1/emails")
	if err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("welcome email rejected with status %d", resp.StatusCode())
	}
	return nil
}
