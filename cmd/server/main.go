package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/papervault/archive-service/internal/config"
	"github.com/papervault/archive-service/internal/database"
	"github.com/papervault/archive-service/internal/extract"
	"github.com/papervault/archive-service/internal/handler"
	"github.com/papervault/archive-service/internal/logger"
	"github.com/papervault/archive-service/internal/ocr"
	"github.com/papervault/archive-service/internal/repository"
	"github.com/papervault/archive-service/internal/server"
	"github.com/papervault/archive-service/internal/service"
	"github.com/papervault/archive-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get()

	// Startup configuration check: the service refuses to run half-wired.
	if err := cfg.Validate(); err != nil {
		var misconfigured *config.MisconfiguredError
		if errors.As(err, &misconfigured) {
			log.Fatal("service is misconfigured", zap.Strings("missing", misconfigured.Missing))
		}
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.ExtractAPIKey == "" {
		log.Warn("no extraction API key configured; scans will be saved with empty parsed fields")
	}

	ctx := context.Background()

	log.Info("connecting to database")
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	log.Info("initializing object storage", zap.String("backend", cfg.StorageBackend))
	var store storage.Store
	var localDir string
	switch cfg.StorageBackend {
	case "local":
		localStore, err := storage.NewLocalStore(cfg.LocalStorageDir)
		if err != nil {
			log.Fatal("failed to initialize local storage", zap.Error(err))
		}
		store = localStore
		localDir = localStore.BaseDir()
	default:
		s3Store, err := storage.NewS3Store(&storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			AccessKeySecret: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
		}, log)
		if err != nil {
			log.Fatal("failed to initialize S3 storage", zap.Error(err))
		}
		store = s3Store
	}

	extractor := ocr.NewTesseractExtractor(cfg.OCRLanguages, log)

	parser := extract.NewClient(&extract.Config{
		APIKey:  cfg.ExtractAPIKey,
		APIURL:  cfg.ExtractAPIURL,
		ModelID: cfg.ExtractModelID,
		Timeout: cfg.ExtractTimeout,
	}, log)

	repo := repository.NewPostgresDocumentRepository(db.GetPool())

	documentService := service.NewDocumentService(repo, log)
	scanService := service.NewScanService(repo, store, extractor, parser, cfg.MaxWorkers, log)

	handlers := server.Handlers{
		Documents: handler.NewDocumentHandler(documentService, log),
		Scan:      handler.NewScanHandler(scanService, log),
		Parse:     handler.NewParseHandler(parser, log),
		Images:    handler.NewImageHandler(store, cfg.SignedURLTTL),
	}

	appServer := server.NewServer(cfg, log, handlers)
	if localDir != "" {
		appServer.ServeLocalFiles(localDir)
	}

	if err := appServer.Start(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
