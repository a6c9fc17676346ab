package main

import (
	"DocBase/internal/config"
	"DocBase/internal/handlers"
	"DocBase/internal/middleware"
	"DocBase/internal/notify"
	"DocBase/internal/repo"
	"DocBase/internal/service"
	"DocBase/internal/storage"
	"context"
	"net/http"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	//context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	userRepo := repo.NewUserRepository(gormDB)
	linkRepo := repo.NewLinkRepository(gormDB)
	signatureRepo := repo.NewSignatureRepository(gormDB)
	viewerRepo := repo.NewViewerRepository(gormDB)

	// хранилище документов
	var blobs storage.BlobStore
	var files *storage.DBStore
	switch cfg.BlobBackend {
	case "s3":
		s3Store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			sugar.Fatalw("failed to initialize S3 storage", "error", err)
		}
		blobs = s3Store
	default:
		files = storage.NewDBStore(repo.NewBlobRepository(gormDB), cfg.ServerURL, cfg.AuthSecret)
		blobs = files
	}

	// уведомления; без ключей каналы отключены
	mail := notify.NewMailClient(cfg.ResendAPIKey, cfg.MailFrom)
	slack := notify.NewSlackClient(cfg.SlackToken)
	if mail == nil {
		sugar.Warnw("RESEND_API_KEY not set, email notifications disabled")
	}
	var notifier notify.Dispatcher = notify.NewService(mail, slack)

	userService := service.NewUserService(userRepo)
	ledger := service.NewSignatureLedger(signatureRepo)
	tracker := service.NewViewerTracker(viewerRepo, sugar)
	completion := service.NewCompletionDetector(signatureRepo, linkRepo, notifier, cfg.SlackChannel, sugar)

	h := handlers.NewHandler(handlers.Services{
		Users:     userService,
		MagicLink: service.NewMagicLinkService(userService, linkRepo, notifier, cfg.AuthSecret, cfg.ServerURL, cfg.MagicLinkTTL()),
		Links:     service.NewLinkService(linkRepo, blobs, tracker, sugar),
		Access:    service.NewAccessService(linkRepo, service.NewPolicyEvaluator(ledger), tracker, blobs, notifier, cfg.SlackChannel, sugar),
		Signing:   service.NewSigningService(linkRepo, userRepo, ledger, completion, notifier, cfg.SlackChannel, sugar),
		Files:     files,
	}, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"BlobBackend", cfg.BlobBackend,
		"SlackChannel", cfg.SlackChannel,
	)

	if err := http.ListenAndServe(addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}
