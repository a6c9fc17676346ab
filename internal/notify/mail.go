package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/resend/resend-go/v2"
)

// MailClient отправляет письма через Resend.
type MailClient struct {
	client *resend.Client
	from   string
}

// NewMailClient возвращает nil при пустом ключе: канал считается ненастроенным.
func NewMailClient(apiKey, from string) *MailClient {
	if apiKey == "" {
		return nil
	}
	return &MailClient{
		client: resend.NewCustomClient(&http.Client{Timeout: 10 * time.Second}, apiKey),
		from:   from,
	}
}

// WithEndpoint переопределяет базовый адрес API (тесты, self-hosted прокси).
func (c *MailClient) WithEndpoint(endpoint string) *MailClient {
	u, err := url.Parse(endpoint + "/")
	if err == nil {
		c.client.BaseURL = u
	}
	return c
}

func (c *MailClient) Send(ctx context.Context, to, subject, text string) error {
	_, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
