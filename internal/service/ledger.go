package service

import (
	"DocBase/internal/model"
	"DocBase/internal/repo"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SignatureRequest проверенный запрос на подпись. Создаётся только через
// NewSignatureRequest, поэтому запрос без согласия существовать не может.
type SignatureRequest struct {
	linkID        string
	signerEmail   string
	signerName    string
	signatureData string
	signatureType model.SignatureType
	userAgent     string
}

// NewSignatureRequest проверяет входные данные подписи. consentAccepted обязан быть true.
func NewSignatureRequest(linkID, signerEmail, signerName, signatureData string, signatureType model.SignatureType, userAgent string, consentAccepted bool) (SignatureRequest, error) {
	if !consentAccepted {
		return SignatureRequest{}, ErrConsentRequired
	}
	email := normalizeEmail(signerEmail)
	switch {
	case linkID == "":
		return SignatureRequest{}, fmt.Errorf("%w: empty link id", ErrInvalidSignature)
	case email == "":
		return SignatureRequest{}, fmt.Errorf("%w: empty signer email", ErrInvalidSignature)
	case strings.TrimSpace(signatureData) == "":
		return SignatureRequest{}, fmt.Errorf("%w: empty signature data", ErrInvalidSignature)
	case !signatureType.Valid():
		return SignatureRequest{}, fmt.Errorf("%w: unknown signature type %q", ErrInvalidSignature, signatureType)
	}
	name := strings.TrimSpace(signerName)
	if name == "" {
		name = email
	}
	return SignatureRequest{
		linkID:        linkID,
		signerEmail:   email,
		signerName:    name,
		signatureData: signatureData,
		signatureType: signatureType,
		userAgent:     userAgent,
	}, nil
}

func (r SignatureRequest) LinkID() string      { return r.linkID }
func (r SignatureRequest) SignerEmail() string { return r.signerEmail }
func (r SignatureRequest) SignerName() string  { return r.signerName }

// SignatureLedger append-only учёт подписей по ссылкам.
type SignatureLedger struct {
	repo repo.SignatureRepository
	now  func() time.Time
}

func NewSignatureLedger(r repo.SignatureRepository) *SignatureLedger {
	return &SignatureLedger{repo: r, now: time.Now}
}

// RecordSignature сохраняет подпись и событие signed одной транзакцией.
// Повторная подпись тем же email возвращает существующую запись вместе с ErrDuplicateSignature.
func (l *SignatureLedger) RecordSignature(ctx context.Context, req SignatureRequest) (*model.Signature, error) {
	if req.linkID == "" {
		// нулевое значение SignatureRequest в обход конструктора
		return nil, ErrConsentRequired
	}
	at := l.now().UTC()
	sig := &model.Signature{
		ID:              uuid.NewString(),
		LinkID:          req.linkID,
		SignerEmail:     req.signerEmail,
		SignerName:      req.signerName,
		SignatureData:   req.signatureData,
		SignatureType:   req.signatureType,
		ConsentAccepted: true,
		UserAgent:       req.userAgent,
		SignedAt:        at,
	}
	email := req.signerEmail
	ev := &model.SignatureEvent{
		ID:          uuid.NewString(),
		LinkID:      req.linkID,
		EventType:   model.EventSigned,
		SignerEmail: &email,
		UserAgent:   req.userAgent,
		CreatedAt:   at,
	}

	created, err := l.repo.CreateWithEvent(ctx, sig, ev)
	if err != nil {
		return nil, fmt.Errorf("record signature: %w", err)
	}
	if created {
		return sig, nil
	}

	existing, err := l.repo.GetByLinkAndEmail(ctx, req.linkID, req.signerEmail)
	if err != nil {
		return nil, fmt.Errorf("load existing signature: %w", err)
	}
	return existing, ErrDuplicateSignature
}

// HasSigned сообщает, есть ли подпись email под ссылкой.
func (l *SignatureLedger) HasSigned(ctx context.Context, linkID, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, nil
	}
	return l.repo.Exists(ctx, linkID, email)
}

// ListSigners возвращает подписи ссылки по возрастанию времени подписания.
func (l *SignatureLedger) ListSigners(ctx context.Context, linkID string) ([]model.Signature, error) {
	return l.repo.ListByLink(ctx, linkID)
}

// ListSignedBy возвращает документы, подписанные пользователем.
func (l *SignatureLedger) ListSignedBy(ctx context.Context, email string) ([]model.Signature, error) {
	return l.repo.ListBySigner(ctx, normalizeEmail(email))
}

// Events возвращает журнал аудита ссылки.
func (l *SignatureLedger) Events(ctx context.Context, linkID string) ([]model.SignatureEvent, error) {
	return l.repo.ListEvents(ctx, linkID)
}
