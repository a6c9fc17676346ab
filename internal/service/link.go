package service

import (
	"DocBase/internal/model"
	"DocBase/internal/repo"
	"DocBase/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LinkInput параметры новой ссылки. Password: сырой пароль, в БД попадает только хеш.
type LinkInput struct {
	Filename              string
	Password              string
	ExpiresAt             *time.Time
	AllowDownload         bool
	RequireEmail          bool
	RequireSignature      bool
	SignatureInstructions *string
	LogoURL               *string
	Heading               *string
	CoverLetter           *string
}

// LinkPatch частичное изменение ссылки; nil-поля не меняются.
type LinkPatch struct {
	Filename              *string
	Password              *string
	RemovePassword        bool
	ExpiresAt             *time.Time
	ClearExpiration       bool
	AllowDownload         *bool
	RequireEmail          *bool
	RequireSignature      *bool
	SignatureInstructions *string
	LogoURL               *string
	Heading               *string
	CoverLetter           *string
}

// LinkService управление ссылками их владельцем.
type LinkService struct {
	links   repo.LinkRepository
	blobs   storage.BlobStore
	viewers *ViewerTracker
	logger  *zap.SugaredLogger
}

func NewLinkService(links repo.LinkRepository, blobs storage.BlobStore, viewers *ViewerTracker, logger *zap.SugaredLogger) *LinkService {
	return &LinkService{links: links, blobs: blobs, viewers: viewers, logger: logger}
}

// CreateLink загружает документ под ключом, равным ID ссылки, и сохраняет ссылку.
func (s *LinkService) CreateLink(ctx context.Context, ownerID int64, in LinkInput, content []byte, contentType string) (*model.Link, error) {
	in.Filename = strings.TrimSpace(in.Filename)
	if in.Filename == "" || len(content) == 0 {
		return nil, ErrInvalidInput
	}
	link := &model.Link{
		ID:                    uuid.NewString(),
		CreatedBy:             ownerID,
		Filename:              in.Filename,
		ExpiresAt:             in.ExpiresAt,
		AllowDownload:         in.AllowDownload,
		RequireEmail:          in.RequireEmail,
		RequireSignature:      in.RequireSignature,
		SignatureInstructions: in.SignatureInstructions,
		LogoURL:               in.LogoURL,
		Heading:               in.Heading,
		CoverLetter:           in.CoverLetter,
	}
	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		link.PasswordHash = &hash
	}

	if err := s.blobs.Upload(ctx, link.ID, content, contentType); err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}
	if err := s.links.Create(ctx, link); err != nil {
		if delErr := s.blobs.Delete(ctx, link.ID); delErr != nil {
			s.logger.Warnw("failed to remove orphan document", "link_id", link.ID, "error", delErr)
		}
		return nil, fmt.Errorf("create link: %w", err)
	}
	s.logger.Infow("Link created", "link_id", link.ID, "owner", ownerID)
	return link, nil
}

// GetLink возвращает ссылку по ID.
func (s *LinkService) GetLink(ctx context.Context, id string) (*model.Link, error) {
	l, err := s.links.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load link: %w", err)
	}
	return l, nil
}

// GetOwned возвращает ссылку, только если она принадлежит ownerID.
func (s *LinkService) GetOwned(ctx context.Context, ownerID int64, id string) (*model.Link, error) {
	l, err := s.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.CreatedBy != ownerID {
		return nil, ErrNotOwner
	}
	return l, nil
}

func (s *LinkService) ListLinks(ctx context.Context, ownerID int64) ([]model.Link, error) {
	return s.links.ListByOwner(ctx, ownerID)
}

// UpdateLink применяет изменения владельца. Пароль только заменяется или снимается.
func (s *LinkService) UpdateLink(ctx context.Context, ownerID int64, id string, p LinkPatch) (*model.Link, error) {
	if _, err := s.GetOwned(ctx, ownerID, id); err != nil {
		return nil, err
	}
	updates, err := p.updates()
	if err != nil {
		return nil, err
	}
	if err := s.links.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update link: %w", err)
	}
	return s.GetLink(ctx, id)
}

func (p LinkPatch) updates() (map[string]any, error) {
	u := map[string]any{}
	if p.Filename != nil {
		name := strings.TrimSpace(*p.Filename)
		if name == "" {
			return nil, ErrInvalidInput
		}
		u["filename"] = name
	}
	switch {
	case p.RemovePassword:
		u["password_hash"] = nil
	case p.Password != nil && *p.Password != "":
		hash, err := HashPassword(*p.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u["password_hash"] = hash
	}
	switch {
	case p.ClearExpiration:
		u["expires_at"] = nil
	case p.ExpiresAt != nil:
		u["expires_at"] = p.ExpiresAt.UTC()
	}
	if p.AllowDownload != nil {
		u["allow_download"] = *p.AllowDownload
	}
	if p.RequireEmail != nil {
		u["require_email"] = *p.RequireEmail
	}
	if p.RequireSignature != nil {
		u["require_signature"] = *p.RequireSignature
	}
	if p.SignatureInstructions != nil {
		u["signature_instructions"] = *p.SignatureInstructions
	}
	if p.LogoURL != nil {
		u["logo_url"] = *p.LogoURL
	}
	if p.Heading != nil {
		u["heading"] = *p.Heading
	}
	if p.CoverLetter != nil {
		u["cover_letter"] = *p.CoverLetter
	}
	return u, nil
}

// DeleteLink удаляет ссылку со всеми подписями, событиями и просмотрами одной
// транзакцией, затем документ из хранилища.
func (s *LinkService) DeleteLink(ctx context.Context, ownerID int64, id string) error {
	if _, err := s.GetOwned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.links.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("delete link: %w", err)
	}
	if err := s.blobs.Delete(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warnw("failed to delete document blob", "link_id", id, "error", err)
	}
	s.logger.Infow("Link deleted", "link_id", id, "owner", ownerID)
	return nil
}

// Analytics статистика просмотров для владельца ссылки.
func (s *LinkService) Analytics(ctx context.Context, ownerID int64, id string) (ViewerAnalytics, error) {
	if _, err := s.GetOwned(ctx, ownerID, id); err != nil {
		return ViewerAnalytics{}, err
	}
	return s.viewers.Analytics(ctx, id)
}
