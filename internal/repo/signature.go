package repo

import (
	"DocBase/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SignatureRepository append-only ledger подписей и журнал событий аудита.
type SignatureRepository interface {
	// CreateWithEvent атомарно вставляет подпись и соответствующее событие signed.
	// Если подпись (link_id, signer_email) уже есть, ничего не пишет и возвращает created=false.
	CreateWithEvent(ctx context.Context, sig *model.Signature, ev *model.SignatureEvent) (created bool, err error)

	// GetByLinkAndEmail возвращает gorm.ErrRecordNotFound, если подписи нет.
	GetByLinkAndEmail(ctx context.Context, linkID, email string) (*model.Signature, error)
	Exists(ctx context.Context, linkID, email string) (bool, error)
	// ListByLink возвращает историю подписания по возрастанию signed_at.
	ListByLink(ctx context.Context, linkID string) ([]model.Signature, error)
	ListBySigner(ctx context.Context, email string) ([]model.Signature, error)

	// AppendEventIfAbsent добавляет событие, если оно не нарушает уникальных ограничений.
	// Для certificate_generated это означает «не более одного на ссылку».
	AppendEventIfAbsent(ctx context.Context, ev *model.SignatureEvent) (created bool, err error)
	HasEvent(ctx context.Context, linkID string, eventType model.EventType) (bool, error)
	ListEvents(ctx context.Context, linkID string) ([]model.SignatureEvent, error)
}

type signatureRepo struct {
	db *gorm.DB
}

func NewSignatureRepository(db *gorm.DB) SignatureRepository {
	return &signatureRepo{db: db}
}

func (r *signatureRepo) CreateWithEvent(ctx context.Context, sig *model.Signature, ev *model.SignatureEvent) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(sig)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// дубликат по (link_id, signer_email): событие не пишем
			return nil
		}
		if err := tx.Create(ev).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *signatureRepo) GetByLinkAndEmail(ctx context.Context, linkID, email string) (*model.Signature, error) {
	var s model.Signature
	err := r.db.WithContext(ctx).
		Where("link_id = ? AND signer_email = ?", linkID, email).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *signatureRepo) Exists(ctx context.Context, linkID, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Signature{}).
		Where("link_id = ? AND signer_email = ?", linkID, email).
		Count(&n).Error
	return n > 0, err
}

func (r *signatureRepo) ListByLink(ctx context.Context, linkID string) ([]model.Signature, error) {
	var sigs []model.Signature
	err := r.db.WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("signed_at ASC").Order("id ASC").
		Find(&sigs).Error
	return sigs, err
}

func (r *signatureRepo) ListBySigner(ctx context.Context, email string) ([]model.Signature, error) {
	var sigs []model.Signature
	err := r.db.WithContext(ctx).
		Where("signer_email = ?", email).
		Order("signed_at DESC").
		Find(&sigs).Error
	return sigs, err
}

func (r *signatureRepo) AppendEventIfAbsent(ctx context.Context, ev *model.SignatureEvent) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(ev)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *signatureRepo) HasEvent(ctx context.Context, linkID string, eventType model.EventType) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SignatureEvent{}).
		Where("link_id = ? AND event_type = ?", linkID, eventType).
		Count(&n).Error
	return n > 0, err
}

func (r *signatureRepo) ListEvents(ctx context.Context, linkID string) ([]model.SignatureEvent, error) {
	var evs []model.SignatureEvent
	err := r.db.WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("created_at ASC").
		Find(&evs).Error
	return evs, err
}
