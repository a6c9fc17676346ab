package repo

import (
	"DocBase/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlobRepository минимальный контракт доступа к Blob.
type BlobRepository interface {
	// Put создаёт или перезаписывает содержимое по ключу.
	Put(ctx context.Context, id, contentType string, data []byte) error
	// Get возвращает gorm.ErrRecordNotFound, если блоба нет.
	Get(ctx context.Context, id string) (*model.Blob, error)
	Delete(ctx context.Context, id string) error
}

type blobRepo struct {
	db *gorm.DB
}

// NewBlobRepository создаёт реализацию репозитория для Blob.
func NewBlobRepository(db *gorm.DB) BlobRepository {
	return &blobRepo{db: db}
}

func (r *blobRepo) Put(ctx context.Context, id, contentType string, data []byte) error {
	b := &model.Blob{ID: id, ContentType: contentType, Data: data}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content_type", "data"}),
	}).Create(b).Error
}

func (r *blobRepo) Get(ctx context.Context, id string) (*model.Blob, error) {
	var b model.Blob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *blobRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Blob{}).Error
}
