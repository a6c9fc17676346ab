package storage

import (
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

const fileTokenIssuer = "docbase-files"

// DBStore хранит документы в таблице blobs. Подписанная ссылка указывает на
// /api/files/{key} сервера и несёт JWT с ключом объекта и сроком действия.
type DBStore struct {
	blobs     repo.BlobRepository
	serverURL string
	secret    []byte
}

func NewDBStore(blobs repo.BlobRepository, serverURL, secret string) *DBStore {
	return &DBStore{blobs: blobs, serverURL: strings.TrimRight(serverURL, "/"), secret: []byte(secret)}
}

func (s *DBStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("object key cannot be empty")
	}
	if err := s.blobs.Put(ctx, key, contentType, data); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (s *DBStore) Download(ctx context.Context, key string) ([]byte, error) {
	b, err := s.blobs.Get(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	return b.Data, nil
}

// Open возвращает содержимое и content type объекта для выдачи по подписанной ссылке.
func (s *DBStore) Open(ctx context.Context, key string) ([]byte, string, error) {
	b, err := s.blobs.Get(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", key, err)
	}
	return b.Data, b.ContentType, nil
}

func (s *DBStore) CreateSignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    fileTokenIssuer,
		Subject:   key,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign file token: %w", err)
	}
	return s.serverURL + "/api/files/" + url.PathEscape(key) + "?token=" + url.QueryEscape(signed), nil
}

// VerifySignedToken проверяет токен подписанной ссылки и возвращает ключ объекта.
func (s *DBStore) VerifySignedToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(fileTokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *DBStore) Delete(ctx context.Context, key string) error {
	return s.blobs.Delete(ctx, key)
}
