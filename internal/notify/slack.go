package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"
)

// SlackClient публикует сообщения через chat.postMessage.
type SlackClient struct {
	token string
	api   *slack.Client
}

// NewSlackClient возвращает nil при пустом токене.
func NewSlackClient(token string) *SlackClient {
	if token == "" {
		return nil
	}
	return &SlackClient{
		token: token,
		api:   slack.New(token, slack.OptionHTTPClient(&http.Client{Timeout: 10 * time.Second})),
	}
}

// WithEndpoint переопределяет адрес Web API (должен заканчиваться на "/").
func (c *SlackClient) WithEndpoint(endpoint string) *SlackClient {
	c.api = slack.New(c.token,
		slack.OptionHTTPClient(&http.Client{Timeout: 10 * time.Second}),
		slack.OptionAPIURL(endpoint),
	)
	return c
}

func (c *SlackClient) PostMessage(ctx context.Context, channel, text string) error {
	if channel == "" {
		return ErrNotConfigured
	}
	if _, _, err := c.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	return nil
}
