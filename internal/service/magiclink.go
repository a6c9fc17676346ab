package service

import (
	"DocBase/internal/model"
	"DocBase/internal/notify"
	"DocBase/internal/repo"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const magicLinkAudience = "docbase-magic-link"

type magicLinkClaims struct {
	jwt.RegisteredClaims
	LinkID string `json:"lid"`
}

// MagicLinkService вход зрителя по ссылке из письма: токен подтверждает владение email.
type MagicLinkService struct {
	users     *UserService
	links     repo.LinkRepository
	notifier  notify.Dispatcher
	secret    []byte
	serverURL string
	ttl       time.Duration
}

func NewMagicLinkService(users *UserService, links repo.LinkRepository, notifier notify.Dispatcher, secret, serverURL string, ttl time.Duration) *MagicLinkService {
	return &MagicLinkService{
		users:     users,
		links:     links,
		notifier:  notifier,
		secret:    []byte(secret),
		serverURL: strings.TrimRight(serverURL, "/"),
		ttl:       ttl,
	}
}

// Issue выписывает токен и отправляет письмо. Возвращает URL подтверждения.
func (s *MagicLinkService) Issue(ctx context.Context, email, linkID string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return "", ErrInvalidInput
	}
	link, err := s.links.GetByID(ctx, linkID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrLinkNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load link: %w", err)
	}

	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, magicLinkClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Audience:  jwt.ClaimStrings{magicLinkAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		LinkID: link.ID,
	}).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign magic link: %w", err)
	}

	confirmURL := s.serverURL + "/api/auth/confirm?token=" + url.QueryEscape(token)
	if err := s.notifier.Notify(ctx, email, notify.TemplateMagicLink, notify.Payload{
		DocumentName: link.Filename,
		URL:          confirmURL,
	}); err != nil {
		return "", fmt.Errorf("send magic link: %w", err)
	}
	return confirmURL, nil
}

// Confirm проверяет токен и возвращает пользователя (создавая при необходимости) и ID ссылки.
func (s *MagicLinkService) Confirm(ctx context.Context, token string) (*model.User, string, error) {
	claims := &magicLinkClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(magicLinkAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || claims.Subject == "" {
		return nil, "", ErrInvalidMagicLink
	}
	u, err := s.users.FindOrCreate(ctx, claims.Subject)
	if err != nil {
		return nil, "", err
	}
	return u, claims.LinkID, nil
}
