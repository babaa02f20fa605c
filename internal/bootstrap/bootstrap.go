package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/odner-app/odner/internal/config"
	"github.com/odner-app/odner/internal/core/domain"
	"github.com/odner-app/odner/internal/core/ports"
	"github.com/odner-app/odner/internal/core/usecase"
	"github.com/odner-app/odner/internal/infrastructure/extractor"
	"github.com/odner-app/odner/internal/infrastructure/jsonstore"
	"github.com/odner-app/odner/internal/infrastructure/modelserver"
	"github.com/odner-app/odner/internal/infrastructure/queue/nats"
	"github.com/odner-app/odner/internal/infrastructure/repository/postgres"
	"github.com/odner-app/odner/internal/infrastructure/resilience"
	"github.com/odner-app/odner/internal/infrastructure/sentence"
	"github.com/odner-app/odner/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue   ports.MessageQueue
	Uploads ports.UploadRepository

	IngestUC   ports.DocumentIngestor
	ProcessUC  ports.UploadProcessor
	Reconciler ports.Reconciler
	Catalog    ports.ConfigCatalog
	QA         ports.QuestionAnswering

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	uploads := postgres.NewUploadRepository(db)
	configRepo := postgres.NewConfigRepository(db)
	nerRepo := postgres.NewNERRepository(db)
	editLog := postgres.NewEditLogRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	texts := localfs.NewTextFiles()
	dicts := jsonstore.New()

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	models := modelserver.New(
		cfg.ModelServerURL,
		time.Duration(cfg.ModelServerTimeoutSeconds)*time.Second,
		executor,
	)

	configSvc := usecase.NewConfigService(
		configRepo, nerRepo, dicts,
		cfg.BaseConfigDir, cfg.DictCacheDir, cfg.DefaultQAModel,
	)
	reconciler := usecase.NewReconcileService(
		nerRepo, configRepo, configSvc, dicts, texts,
		models, models, editLog, uploads,
		cfg.DictCacheDir,
	)
	ingestUC := usecase.NewIngestUploadUseCase(
		uploads, storage, texts, extractor.New(), models, queue,
		cfg.TextDir, cfg.TranslateEnabled,
	)
	processUC := usecase.NewProcessUploadUseCase(uploads, reconciler)
	qaSvc := usecase.NewQAService(models, sentence.NewSplitter(0), cfg.QAMinSentenceScore)

	// Base configurations must exist before any document is loaded.
	for _, lang := range domain.Languages() {
		if _, err := configSvc.EnsureBase(ctx, lang); err != nil {
			queue.Close()
			_ = db.Close()
			return nil, fmt.Errorf("ensure base configuration (%s): %w", lang, err)
		}
	}

	return &App{
		Config: cfg,

		Queue:   queue,
		Uploads: uploads,

		IngestUC:   ingestUC,
		ProcessUC:  processUC,
		Reconciler: reconciler,
		Catalog:    configSvc,
		QA:         qaSvc,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
