package repo

import (
	"DocBase/internal/model"
	"context"

	"gorm.io/gorm"
)

// LinkRepository контракт доступа к ссылкам.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	// GetByID возвращает gorm.ErrRecordNotFound, если ссылки нет.
	GetByID(ctx context.Context, id string) (*model.Link, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Link, error)
	// Update применяет изменения к полям ссылки владельца.
	Update(ctx context.Context, id string, updates map[string]any) error
	// Delete удаляет ссылку вместе с подписями, событиями и просмотрами одной транзакцией.
	Delete(ctx context.Context, id string) error
}

type linkRepo struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepo{db: db}
}

func (r *linkRepo) Create(ctx context.Context, link *model.Link) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *linkRepo) GetByID(ctx context.Context, id string) (*model.Link, error) {
	var l model.Link
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *linkRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Link, error) {
	var links []model.Link
	err := r.db.WithContext(ctx).
		Where("created_by = ?", ownerID).
		Order("created_at DESC").
		Find(&links).Error
	return links, err
}

func (r *linkRepo) Update(ctx context.Context, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	tx := r.db.WithContext(ctx).Model(&model.Link{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *linkRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("link_id = ?", id).Delete(&model.SignatureEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("link_id = ?", id).Delete(&model.Signature{}).Error; err != nil {
			return err
		}
		if err := tx.Where("link_id = ?", id).Delete(&model.Viewer{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Link{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
