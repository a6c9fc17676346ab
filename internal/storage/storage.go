// Package storage хранилище содержимого документов. Ключ объекта совпадает с ID ссылки.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound объект с таким ключом отсутствует.
var ErrNotFound = errors.New("object not found")

// BlobStore контракт объектного хранилища.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// Download возвращает ErrNotFound, если объекта нет.
	Download(ctx context.Context, key string) ([]byte, error)
	// CreateSignedURL выдаёт временную ссылку на скачивание объекта.
	CreateSignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}
