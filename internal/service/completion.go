package service

import (
	"DocBase/internal/model"
	"DocBase/internal/notify"
	"DocBase/internal/repo"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// requiredSigners порог завершения: создатель и хотя бы один контрагент.
const requiredSigners = 2

// CompletionResult итог проверки завершения подписания.
type CompletionResult struct {
	Complete bool
	Signers  []model.Signature
	// Notified true, если именно этот вызов зафиксировал завершение и разослал уведомления.
	Notified bool
}

// SignerEmails адреса подписантов в порядке подписания.
func (r CompletionResult) SignerEmails() []string {
	out := make([]string, 0, len(r.Signers))
	for _, s := range r.Signers {
		out = append(out, s.SignerEmail)
	}
	return out
}

type certificateSigner struct {
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	SignedAt time.Time `json:"signed_at"`
}

type certificateMetadata struct {
	AllSigners []certificateSigner `json:"all_signers"`
}

// CompletionDetector фиксирует переход ссылки в «полностью подписано» ровно один раз.
type CompletionDetector struct {
	signatures   repo.SignatureRepository
	links        repo.LinkRepository
	notifier     notify.Dispatcher
	slackChannel string
	logger       *zap.SugaredLogger
	now          func() time.Time
}

func NewCompletionDetector(signatures repo.SignatureRepository, links repo.LinkRepository, notifier notify.Dispatcher, slackChannel string, logger *zap.SugaredLogger) *CompletionDetector {
	return &CompletionDetector{
		signatures:   signatures,
		links:        links,
		notifier:     notifier,
		slackChannel: slackChannel,
		logger:       logger,
		now:          time.Now,
	}
}

// CheckCompletion пересчитывает подписантов из ledger'а. При первом обнаружении
// завершения добавляет событие certificate_generated и уведомляет всех подписантов.
// Уникальный индекс БД гарантирует, что событие и рассылка происходят один раз на ссылку.
func (d *CompletionDetector) CheckCompletion(ctx context.Context, linkID string) (CompletionResult, error) {
	sigs, err := d.signatures.ListByLink(ctx, linkID)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("list signatures: %w", err)
	}
	if distinctSigners(sigs) < requiredSigners {
		return CompletionResult{Signers: sigs}, nil
	}
	res := CompletionResult{Complete: true, Signers: sigs}

	already, err := d.signatures.HasEvent(ctx, linkID, model.EventCertificateGenerated)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("check certificate event: %w", err)
	}
	if already {
		return res, nil
	}

	ev, err := d.certificateEvent(linkID, sigs)
	if err != nil {
		return CompletionResult{}, err
	}
	created, err := d.signatures.AppendEventIfAbsent(ctx, ev)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("append certificate event: %w", err)
	}
	if !created {
		// параллельный запрос успел раньше
		d.logger.Debugw("completion already recorded", "link_id", linkID)
		return res, nil
	}

	d.logger.Infow("All parties have signed", "link_id", linkID, "signers", len(sigs))
	d.notifySigners(ctx, linkID, sigs)
	res.Notified = true
	return res, nil
}

func (d *CompletionDetector) certificateEvent(linkID string, sigs []model.Signature) (*model.SignatureEvent, error) {
	meta := certificateMetadata{AllSigners: make([]certificateSigner, 0, len(sigs))}
	for _, s := range sigs {
		meta.AllSigners = append(meta.AllSigners, certificateSigner{Email: s.SignerEmail, Name: s.SignerName, SignedAt: s.SignedAt})
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal certificate metadata: %w", err)
	}
	return &model.SignatureEvent{
		ID:        uuid.NewString(),
		LinkID:    linkID,
		EventType: model.EventCertificateGenerated,
		Metadata:  datatypes.JSON(raw),
		CreatedAt: d.now().UTC(),
	}, nil
}

// notifySigners рассылает письма о завершении. Ошибки только логируются.
func (d *CompletionDetector) notifySigners(ctx context.Context, linkID string, sigs []model.Signature) {
	docName := documentName(ctx, d.links, linkID)
	emails := make([]string, 0, len(sigs))
	for _, s := range sigs {
		emails = append(emails, s.SignerEmail)
	}
	at := d.now().UTC().Format(time.RFC1123)

	for _, s := range sigs {
		err := d.notifier.Notify(ctx, s.SignerEmail, notify.TemplateSignatureComplete, notify.Payload{
			DocumentName:  docName,
			RecipientName: s.SignerName,
			Signers:       emails,
			At:            at,
		})
		if err != nil {
			d.logger.Errorw("Failed to send completion notification", "link_id", linkID, "email", s.SignerEmail, "error", err)
			continue
		}
		d.logger.Infow("Completion notification sent", "link_id", linkID, "email", s.SignerEmail)
	}

	if err := d.notifier.NotifySlack(ctx, d.slackChannel, notify.CompletedMessage(docName, emails)); err != nil {
		d.logger.Warnw("Failed to send Slack completion message", "link_id", linkID, "error", err)
	}
}

func distinctSigners(sigs []model.Signature) int {
	seen := make(map[string]struct{}, len(sigs))
	for _, s := range sigs {
		seen[normalizeEmail(s.SignerEmail)] = struct{}{}
	}
	return len(seen)
}

// documentName имя документа для уведомлений; при ошибке чтения ссылки: заглушка.
func documentName(ctx context.Context, links repo.LinkRepository, linkID string) string {
	l, err := links.GetByID(ctx, linkID)
	if err != nil || l.Filename == "" {
		return "Document"
	}
	return l.Filename
}
