package repo

import (
	"DocBase/internal/model"
	"context"

	"gorm.io/gorm"
)

// ViewerStats агрегаты просмотров по ссылке.
type ViewerStats struct {
	AllViewers    int64
	UniqueViewers int64
}

// ViewerRepository журнал просмотров. Дедупликации нет: каждый просмотр отдельная строка.
type ViewerRepository interface {
	Create(ctx context.Context, v *model.Viewer) error
	Stats(ctx context.Context, linkID string) (ViewerStats, error)
	ListByLink(ctx context.Context, linkID string) ([]model.Viewer, error)
}

type viewerRepo struct {
	db *gorm.DB
}

func NewViewerRepository(db *gorm.DB) ViewerRepository {
	return &viewerRepo{db: db}
}

func (r *viewerRepo) Create(ctx context.Context, v *model.Viewer) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *viewerRepo) Stats(ctx context.Context, linkID string) (ViewerStats, error) {
	var st ViewerStats
	q := r.db.WithContext(ctx).Model(&model.Viewer{}).Where("link_id = ?", linkID)
	if err := q.Count(&st.AllViewers).Error; err != nil {
		return ViewerStats{}, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Viewer{}).
		Where("link_id = ?", linkID).
		Distinct("email").
		Count(&st.UniqueViewers).Error; err != nil {
		return ViewerStats{}, err
	}
	return st, nil
}

func (r *viewerRepo) ListByLink(ctx context.Context, linkID string) ([]model.Viewer, error) {
	var vs []model.Viewer
	err := r.db.WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("viewed_at DESC").
		Find(&vs).Error
	return vs, err
}
