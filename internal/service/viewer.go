package service

import (
	"DocBase/internal/model"
	"DocBase/internal/repo"
	"context"
	"time"

	"go.uber.org/zap"
)

// ViewerAnalytics аналитика просмотров ссылки.
type ViewerAnalytics struct {
	AllViewers    int64          `json:"all_viewers"`
	UniqueViewers int64          `json:"unique_viewers"`
	Viewers       []model.Viewer `json:"viewers"`
}

// ViewerTracker записывает просмотры. Запись best-effort: сбой не мешает выдаче документа.
type ViewerTracker struct {
	viewers repo.ViewerRepository
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewViewerTracker(viewers repo.ViewerRepository, logger *zap.SugaredLogger) *ViewerTracker {
	return &ViewerTracker{viewers: viewers, logger: logger, now: time.Now}
}

// RecordView добавляет строку просмотра. Дедупликации нет.
func (t *ViewerTracker) RecordView(ctx context.Context, linkID, email string) {
	v := &model.Viewer{LinkID: linkID, Email: normalizeEmail(email), ViewedAt: t.now().UTC()}
	if err := t.viewers.Create(ctx, v); err != nil {
		t.logger.Errorw("Error inserting viewer record", "link_id", linkID, "email", v.Email, "error", err)
		return
	}
	t.logger.Infow("Viewer email captured", "link_id", linkID, "email", v.Email)
}

// Analytics возвращает число всех и уникальных просмотров и сами просмотры.
func (t *ViewerTracker) Analytics(ctx context.Context, linkID string) (ViewerAnalytics, error) {
	st, err := t.viewers.Stats(ctx, linkID)
	if err != nil {
		return ViewerAnalytics{}, err
	}
	vs, err := t.viewers.ListByLink(ctx, linkID)
	if err != nil {
		return ViewerAnalytics{}, err
	}
	return ViewerAnalytics{AllViewers: st.AllViewers, UniqueViewers: st.UniqueViewers, Viewers: vs}, nil
}
