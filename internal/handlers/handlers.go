package handlers

import (
	"DocBase/internal/config"
	"DocBase/internal/middleware"
	"DocBase/internal/service"
	"DocBase/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// Services зависимости хендлеров.
type Services struct {
	Users     *service.UserService
	MagicLink *service.MagicLinkService
	Links     *service.LinkService
	Access    *service.AccessService
	Signing   *service.SigningService
	// Files отдаёт документы по подписанным ссылкам; nil, если документы лежат в S3.
	Files *storage.DBStore
}

// NewHandler разводящий для хендлеров
func NewHandler(svc Services, logger *zap.SugaredLogger, config *config.Config) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(svc.Users, svc.MagicLink, logger, config)
	linkHandler := NewLinkHandler(svc.Links, svc.MagicLink, logger, config)
	accessHandler := NewAccessHandler(svc.Access, svc.Files, logger, config)
	signatureHandler := NewSignatureHandler(svc.Signing, logger)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Post("/api/user/test", userHandler.Status)
	r.Get("/api/auth/confirm", userHandler.ConfirmMagicLink)

	// Link management
	r.Post("/api/links", linkHandler.Create)
	r.Get("/api/links", linkHandler.List)
	r.Get("/api/links/{id}", linkHandler.Get)
	r.Patch("/api/links/{id}", linkHandler.Update)
	r.Delete("/api/links/{id}", linkHandler.Delete)
	r.Get("/api/links/{id}/analytics", linkHandler.Analytics)
	r.Post("/api/links/{id}/magic-link", linkHandler.SendMagicLink)

	// Document access
	r.Post("/api/links/{id}/access", accessHandler.RequestAccess)
	r.Get("/api/view-document/{id}", accessHandler.ViewDocument)
	r.Get("/api/files/{key}", accessHandler.File)

	// Signatures
	r.Post("/api/links/{id}/sign", signatureHandler.Sign)
	r.Get("/api/links/{id}/signatures", signatureHandler.List)
	r.Get("/api/signatures/mine", signatureHandler.Mine)

	return &Handler{Router: r}
}
