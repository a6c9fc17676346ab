package service

import (
	"DocBase/internal/model"
	"DocBase/internal/notify"
	"DocBase/internal/repo"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SignOutcome итог действия «подписать».
type SignOutcome struct {
	Signature     *model.Signature
	AlreadySigned bool
	Completion    CompletionResult
}

// SigningService сценарий подписания: запись в ledger, уведомление владельца,
// проверка завершения.
type SigningService struct {
	links        repo.LinkRepository
	users        repo.UserRepository
	ledger       *SignatureLedger
	completion   *CompletionDetector
	notifier     notify.Dispatcher
	slackChannel string
	logger       *zap.SugaredLogger
	now          func() time.Time
}

func NewSigningService(
	links repo.LinkRepository,
	users repo.UserRepository,
	ledger *SignatureLedger,
	completion *CompletionDetector,
	notifier notify.Dispatcher,
	slackChannel string,
	logger *zap.SugaredLogger,
) *SigningService {
	return &SigningService{
		links:        links,
		users:        users,
		ledger:       ledger,
		completion:   completion,
		notifier:     notifier,
		slackChannel: slackChannel,
		logger:       logger,
		now:          time.Now,
	}
}

// Sign записывает подпись и проверяет завершение. Повторная подпись тем же
// подписантом не считается ошибкой: AlreadySigned=true и существующая запись.
func (s *SigningService) Sign(ctx context.Context, req SignatureRequest) (SignOutcome, error) {
	link, err := s.links.GetByID(ctx, req.LinkID())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return SignOutcome{}, ErrLinkNotFound
	}
	if err != nil {
		return SignOutcome{}, fmt.Errorf("load link: %w", err)
	}
	if link.Expired(s.now()) {
		return SignOutcome{}, ErrLinkExpired
	}
	if !link.RequireSignature {
		return SignOutcome{}, ErrSignatureNotRequired
	}

	sig, err := s.ledger.RecordSignature(ctx, req)
	duplicate := errors.Is(err, ErrDuplicateSignature)
	if err != nil && !duplicate {
		return SignOutcome{}, err
	}
	out := SignOutcome{Signature: sig, AlreadySigned: duplicate}

	if !duplicate {
		s.logger.Infow("Signature recorded", "link_id", link.ID, "signer", sig.SignerEmail)
		s.notifyOwner(ctx, link, sig)
	}

	// повтор после сбоя тоже доводит завершение до конца
	res, err := s.completion.CheckCompletion(ctx, link.ID)
	if err != nil {
		return out, fmt.Errorf("check completion: %w", err)
	}
	out.Completion = res
	return out, nil
}

// notifyOwner сообщает владельцу ссылки о новой подписи. Ошибки только логируются.
func (s *SigningService) notifyOwner(ctx context.Context, link *model.Link, sig *model.Signature) {
	owner, err := s.users.GetUserByID(ctx, link.CreatedBy)
	if err != nil {
		s.logger.Errorw("Creator not found", "link_id", link.ID, "creator_id", link.CreatedBy, "error", err)
		return
	}
	// владелец подписывает сам: писать ему не о чем
	if normalizeEmail(owner.Email) != sig.SignerEmail {
		err = s.notifier.Notify(ctx, owner.Email, notify.TemplateSignatureReceived, notify.Payload{
			DocumentName:  link.Filename,
			RecipientName: owner.Name,
			SignerName:    sig.SignerName,
			SignerEmail:   sig.SignerEmail,
			At:            sig.SignedAt.Format(time.RFC1123),
		})
		if err != nil {
			s.logger.Errorw("Failed to send signature notification", "link_id", link.ID, "error", err)
		}
	}
	if err := s.notifier.NotifySlack(ctx, s.slackChannel, notify.SignedMessage(link.Filename, sig.SignerName, sig.SignerEmail)); err != nil {
		s.logger.Warnw("Failed to send Slack notification for signature", "link_id", link.ID, "error", err)
	}
}

// History возвращает подписи ссылки; доступно владельцу и подписантам.
func (s *SigningService) History(ctx context.Context, linkID string, userID int64, email string) ([]model.Signature, error) {
	link, err := s.links.GetByID(ctx, linkID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load link: %w", err)
	}
	if link.CreatedBy != userID {
		signed, err := s.ledger.HasSigned(ctx, linkID, email)
		if err != nil {
			return nil, err
		}
		if !signed {
			return nil, ErrNotOwner
		}
	}
	return s.ledger.ListSigners(ctx, linkID)
}

// SignedBy документы, подписанные пользователем.
func (s *SigningService) SignedBy(ctx context.Context, email string) ([]model.Signature, error) {
	return s.ledger.ListSignedBy(ctx, email)
}
