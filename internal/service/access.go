package service

import (
	"DocBase/internal/model"
	"DocBase/internal/notify"
	"DocBase/internal/repo"
	"DocBase/internal/storage"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const viewedNotifyTimeout = 5 * time.Second

// AccessResult решение по запросу и ссылка, к которой оно относится.
type AccessResult struct {
	Decision Decision
	Link     *model.Link
}

// AccessService единая точка входа для выдачи документа: политика ссылки,
// учёт просмотров для email-gated ссылок и доступ к хранилищу.
type AccessService struct {
	links        repo.LinkRepository
	policy       *PolicyEvaluator
	viewers      *ViewerTracker
	blobs        storage.BlobStore
	notifier     notify.Dispatcher
	slackChannel string
	logger       *zap.SugaredLogger
	now          func() time.Time
}

func NewAccessService(
	links repo.LinkRepository,
	policy *PolicyEvaluator,
	viewers *ViewerTracker,
	blobs storage.BlobStore,
	notifier notify.Dispatcher,
	slackChannel string,
	logger *zap.SugaredLogger,
) *AccessService {
	return &AccessService{
		links:        links,
		policy:       policy,
		viewers:      viewers,
		blobs:        blobs,
		notifier:     notifier,
		slackChannel: slackChannel,
		logger:       logger,
		now:          time.Now,
	}
}

// RequestAccess решает, можно ли отдать документ. Отказы возвращаются как Decision,
// ошибка означает сбой хранилища или отсутствие ссылки.
func (s *AccessService) RequestAccess(ctx context.Context, linkID string, rc RequestContext) (AccessResult, error) {
	link, err := s.links.GetByID(ctx, linkID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AccessResult{}, ErrLinkNotFound
	}
	if err != nil {
		return AccessResult{}, fmt.Errorf("load link: %w", err)
	}
	if rc.Now.IsZero() {
		rc.Now = s.now()
	}

	decision, err := s.policy.Evaluate(ctx, link, rc)
	if err != nil {
		return AccessResult{}, err
	}
	if !decision.IsGranted() {
		s.logger.Debugw("access denied", "link_id", link.ID, "decision", decision)
		return AccessResult{Decision: decision, Link: link}, nil
	}

	if link.RequireEmail && !link.RequireSignature {
		email := rc.identity()
		if email == "" {
			return AccessResult{Decision: DeniedEmailRequired, Link: link}, nil
		}
		// отказ в скачивании не считается просмотром
		if rc.Download && !link.AllowDownload {
			return AccessResult{}, ErrDownloadNotAllowed
		}
		s.viewers.RecordView(ctx, link.ID, email)
		go s.notifyViewed(context.WithoutCancel(ctx), link, email)
		return AccessResult{Decision: Granted, Link: link}, nil
	}
	if rc.Download && !link.AllowDownload {
		return AccessResult{}, ErrDownloadNotAllowed
	}
	return AccessResult{Decision: Granted, Link: link}, nil
}

// notifyViewed сообщает в Slack о просмотре, не задерживая выдачу документа.
func (s *AccessService) notifyViewed(ctx context.Context, link *model.Link, email string) {
	ctx, cancel := context.WithTimeout(ctx, viewedNotifyTimeout)
	defer cancel()
	if err := s.notifier.NotifySlack(ctx, s.slackChannel, notify.ViewedMessage(link.Filename, email)); err != nil {
		s.logger.Debugw("Slack view notification skipped", "link_id", link.ID, "error", err)
	}
}

// OpenDocument проверяет доступ и при успехе возвращает содержимое документа.
func (s *AccessService) OpenDocument(ctx context.Context, linkID string, rc RequestContext) (AccessResult, []byte, error) {
	res, err := s.RequestAccess(ctx, linkID, rc)
	if err != nil || !res.Decision.IsGranted() {
		return res, nil, err
	}
	data, err := s.blobs.Download(ctx, res.Link.ID)
	if err != nil {
		return AccessResult{}, nil, fmt.Errorf("download document: %w", err)
	}
	return res, data, nil
}

// DocumentName имя файла документа по ключу хранилища (ключ совпадает с id ссылки).
// Если ссылка не найдена, возвращается сам ключ.
func (s *AccessService) DocumentName(ctx context.Context, key string) string {
	link, err := s.links.GetByID(ctx, key)
	if err != nil || link.Filename == "" {
		return key
	}
	return link.Filename
}

// DocumentURL проверяет доступ и при успехе выдаёт временную ссылку на документ.
func (s *AccessService) DocumentURL(ctx context.Context, linkID string, rc RequestContext, ttl time.Duration) (AccessResult, string, error) {
	res, err := s.RequestAccess(ctx, linkID, rc)
	if err != nil || !res.Decision.IsGranted() {
		return res, "", err
	}
	u, err := s.blobs.CreateSignedURL(ctx, res.Link.ID, ttl)
	if err != nil {
		return AccessResult{}, "", fmt.Errorf("create signed url: %w", err)
	}
	return res, u, nil
}
