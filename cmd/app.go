package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/senyabanana/licitagora/internal/db"
	"github.com/senyabanana/licitagora/internal/extractor"
	"github.com/senyabanana/licitagora/internal/handlers"
	"github.com/senyabanana/licitagora/internal/metrics"
	"github.com/senyabanana/licitagora/internal/repository"
	"github.com/senyabanana/licitagora/internal/router"
	"github.com/senyabanana/licitagora/internal/router/config"
	"github.com/senyabanana/licitagora/internal/services"
	"github.com/senyabanana/licitagora/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

// app связывает пул, репозитории, сервисы и обработчики.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	dbPool  *pgxpool.Pool
	metrics *metrics.Metrics

	Tenders      *services.TenderService
	Clients      *services.ClientService
	Documents    *services.DocumentService
	Requirements *services.RequirementService
	Deadlines    *services.DeadlineService
	Reports      *services.ReportService
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	dbPool, err := db.InitDb(ctx, cfg)
	if err != nil {
		return nil, err
	}

	files, err := storage.NewDiskStorage(cfg.StorageDir)
	if err != nil {
		dbPool.Close()
		return nil, err
	}

	m := metrics.New()
	repos := repository.NewPostgresRepositories(dbPool)
	tx := repository.NewPostgresTransactor(dbPool)

	return &app{
		cfg:          cfg,
		logger:       logger,
		dbPool:       dbPool,
		metrics:      m,
		Tenders:      services.NewTenderService(repos, tx, files, logger, m),
		Clients:      services.NewClientService(repos, files, logger),
		Documents:    services.NewDocumentService(repos, tx, files, extractor.NewDocumentTextExtractor(), logger, m),
		Requirements: services.NewRequirementService(repos, logger),
		Deadlines:    services.NewDeadlineService(repos, logger, m),
		Reports:      services.NewReportService(repos, logger),
	}, nil
}

// Routes собирает HTTP-обработчики поверх сервисов.
func (a *app) Routes() http.Handler {
	timeout := a.cfg.RequestTimeout
	return router.InitRoutes(router.Handlers{
		Tenders:      handlers.NewTenderHandler(a.Tenders, a.logger, timeout),
		Clients:      handlers.NewClientHandler(a.Clients, a.logger, timeout),
		Documents:    handlers.NewDocumentHandler(a.Documents, a.logger, timeout, a.cfg.MaxUploadBytes()),
		Requirements: handlers.NewRequirementHandler(a.Requirements, a.logger, timeout),
		Deadlines:    handlers.NewDeadlineHandler(a.Deadlines, a.Reports, a.logger, timeout),
	}, a.metrics)
}

func (a *app) Close() {
	a.dbPool.Close()
}
