package services

import (
	"context"
	"log/slog"

	"github.com/senyabanana/licitagora/internal/models"
	"github.com/senyabanana/licitagora/internal/repository"
)

type ReportService struct {
	Repo   repository.TenderRepository
	logger *slog.Logger
}

// NewReportService создаёт новый экземпляр ReportService.
func NewReportService(repos repository.Repositories, logger *slog.Logger) *ReportService {
	return &ReportService{Repo: repos.Tenders, logger: logger}
}

// GetSummary возвращает сводку по статусам и итогам тендеров.
func (s *ReportService) GetSummary(ctx context.Context) (*models.Summary, error) {
	summary, err := s.Repo.GetSummary(ctx)
	if err != nil {
		return nil, storageFailure(s.logger, "failed to build summary", err)
	}
	return summary, nil
}
