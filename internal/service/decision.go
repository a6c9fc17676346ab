package service

import (
	"strings"
	"time"
)

// Decision типизированный итог проверки политики ссылки.
// Каждый отказ соответствует своему способу исправления на стороне клиента.
type Decision string

const (
	Granted                 Decision = "granted"
	DeniedExpired           Decision = "denied_expired"
	DeniedPasswordRequired  Decision = "denied_password_required"
	DeniedPasswordIncorrect Decision = "denied_password_incorrect"
	DeniedAuthRequired      Decision = "denied_auth_required"
	DeniedSignatureRequired Decision = "denied_signature_required"
	DeniedEmailRequired     Decision = "denied_email_required"
)

func (d Decision) IsGranted() bool { return d == Granted }

// RequestContext всё, что известно о запросе. Пустые строки означают «не передано».
type RequestContext struct {
	AuthenticatedEmail string
	SubmittedPassword  string
	// ViewerEmail email, введённый зрителем без входа (email capture).
	ViewerEmail string
	UserAgent   string
	// Download зритель просит файл вложением, а не просмотр.
	Download bool
	Now      time.Time
}

// identity email, под которым учитывается просмотр: вошедший пользователь важнее введённого email.
func (rc RequestContext) identity() string {
	if rc.AuthenticatedEmail != "" {
		return normalizeEmail(rc.AuthenticatedEmail)
	}
	return normalizeEmail(rc.ViewerEmail)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
