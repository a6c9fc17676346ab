// Package notify best-effort доставка уведомлений: email (Resend API) и Slack.
// Ошибки доставки возвращаются вызывающему для логирования и никогда не должны
// откатывать авторитетные записи.
package notify

import (
	"context"
	"errors"
)

// ErrNotConfigured канал доставки не настроен (нет ключа API).
var ErrNotConfigured = errors.New("notification channel not configured")

// Dispatcher контракт отправки уведомлений.
type Dispatcher interface {
	Notify(ctx context.Context, recipient string, tmpl Template, payload Payload) error
	NotifySlack(ctx context.Context, channel, text string) error
}

// Service объединяет почтовый и Slack-каналы.
type Service struct {
	mail  *MailClient
	slack *SlackClient
}

// NewService собирает диспетчер; nil-канал считается ненастроенным.
func NewService(mail *MailClient, slack *SlackClient) *Service {
	return &Service{mail: mail, slack: slack}
}

func (s *Service) Notify(ctx context.Context, recipient string, tmpl Template, payload Payload) error {
	if s.mail == nil {
		return ErrNotConfigured
	}
	subject, body, err := Render(tmpl, payload)
	if err != nil {
		return err
	}
	return s.mail.Send(ctx, recipient, subject, body)
}

func (s *Service) NotifySlack(ctx context.Context, channel, text string) error {
	if s.slack == nil {
		return ErrNotConfigured
	}
	return s.slack.PostMessage(ctx, channel, text)
}
