package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/senyabanana/licitagora/internal/metrics"
	"github.com/senyabanana/licitagora/internal/models"
	"github.com/senyabanana/licitagora/internal/repository"
	"github.com/senyabanana/licitagora/internal/validation"

	"github.com/google/uuid"
)

const deadlineNotFoundMessage = "deadline not found"

type DeadlineService struct {
	Repo    repository.DeadlineRepository
	Tenders repository.TenderRepository
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewDeadlineService создаёт новый экземпляр DeadlineService.
func NewDeadlineService(repos repository.Repositories, logger *slog.Logger, m *metrics.Metrics) *DeadlineService {
	return &DeadlineService{
		Repo:    repos.Deadlines,
		Tenders: repos.Tenders,
		logger:  logger,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetDeadlines возвращает дедлайны в окне дат [from, to]; границы необязательны.
func (s *DeadlineService) GetDeadlines(ctx context.Context, fromStr, toStr string) ([]models.Deadline, error) {
	var v validation.Violations
	var from, to *time.Time
	if date, ok := v.OptionalDate("from", fromStr); ok {
		from = &date
	}
	if date, ok := v.OptionalDate("to", toStr); ok {
		to = &date
	}
	if from != nil && to != nil && to.Before(*from) {
		v.Add("to must not be before from")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	deadlines, err := s.Repo.GetDeadlines(ctx, from, to)
	if err != nil {
		return nil, storageFailure(s.logger, "failed to list deadlines", err)
	}
	return deadlines, nil
}

// GetDeadline получает дедлайн по ID.
func (s *DeadlineService) GetDeadline(ctx context.Context, deadlineId string) (*models.Deadline, error) {
	deadline, err := s.Repo.GetDeadlineById(ctx, deadlineId)
	if err != nil {
		return nil, repoError(s.logger, err, deadlineNotFoundMessage, "failed to get deadline", "deadline_id", deadlineId)
	}
	return deadline, nil
}

// CreateDeadline создает дедлайн вручную.
func (s *DeadlineService) CreateDeadline(ctx context.Context, deadlineReq models.DeadlineRequest) (*models.Deadline, error) {
	deadline := &models.Deadline{ID: uuid.New().String(), CreatedAt: s.now()}
	if err := s.applyDeadline(ctx, deadline, deadlineReq); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateDeadline(ctx, deadline); err != nil {
		return nil, storageFailure(s.logger, "failed to create deadline", err)
	}
	return deadline, nil
}

// UpdateDeadline перезаписывает поля дедлайна.
func (s *DeadlineService) UpdateDeadline(ctx context.Context, deadlineId string, deadlineReq models.DeadlineRequest) (*models.Deadline, error) {
	deadline, err := s.GetDeadline(ctx, deadlineId)
	if err != nil {
		return nil, err
	}
	if err := s.applyDeadline(ctx, deadline, deadlineReq); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateDeadline(ctx, deadline); err != nil {
		return nil, repoError(s.logger, err, deadlineNotFoundMessage, "failed to update deadline", "deadline_id", deadlineId)
	}
	return deadline, nil
}

// DeleteDeadline удаляет дедлайн.
func (s *DeadlineService) DeleteDeadline(ctx context.Context, deadlineId string) error {
	if err := s.Repo.DeleteDeadline(ctx, deadlineId); err != nil {
		return repoError(s.logger, err, deadlineNotFoundMessage, "failed to delete deadline", "deadline_id", deadlineId)
	}
	return nil
}

// ImportFromTenders создаёт по одному дедлайну на тендер в работе с датой закрытия.
// Повторный запуск ничего не дублирует: уже импортированный дедлайн узнаётся по заметке.
func (s *DeadlineService) ImportFromTenders(ctx context.Context) (*models.DeadlineImportResult, error) {
	tenders, err := s.Tenders.GetTendersClosingInProgress(ctx)
	if err != nil {
		return nil, storageFailure(s.logger, "failed to list tenders for deadline import", err)
	}

	imported := 0
	for _, tender := range tenders {
		if tender.ClosingDate == nil {
			continue
		}
		exists, err := s.Repo.HasTenderDeadline(ctx, tender.ID, models.ImportedDeadlineNotes)
		if err != nil {
			return nil, storageFailure(s.logger, "failed to check imported deadline", err, "tender_id", tender.ID)
		}
		if exists {
			continue
		}

		notes := models.ImportedDeadlineNotes
		tenderId := tender.ID
		deadline := &models.Deadline{
			ID:        uuid.New().String(),
			Title:     fmt.Sprintf("Closing of Tender: %s - %s", tender.Number, tender.IssuingBody),
			Date:      *tender.ClosingDate,
			Notes:     &notes,
			TenderID:  &tenderId,
			CreatedAt: s.now(),
		}
		if err := s.Repo.CreateDeadline(ctx, deadline); err != nil {
			return nil, storageFailure(s.logger, "failed to import deadline", err, "tender_id", tender.ID)
		}
		imported++
	}

	s.metrics.DeadlinesImported.Add(float64(imported))
	s.logger.Info("deadlines imported from tenders", "imported", imported, "scanned", len(tenders))
	return &models.DeadlineImportResult{Imported: imported}, nil
}

func (s *DeadlineService) applyDeadline(ctx context.Context, deadline *models.Deadline, deadlineReq models.DeadlineRequest) error {
	var v validation.Violations
	title := strings.TrimSpace(deadlineReq.Title)
	v.Required("title", title)
	date, _ := v.Date("date", deadlineReq.Date)

	tenderId := validation.TrimmedOrNil(deadlineReq.TenderID)
	if tenderId != nil {
		_, err := s.Tenders.GetTenderById(ctx, *tenderId)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			v.Add("tenderId does not reference an existing tender")
		case err != nil:
			return storageFailure(s.logger, "failed to check deadline tender", err, "tender_id", *tenderId)
		}
	}
	if err := v.Err(); err != nil {
		return err
	}

	deadline.Title = title
	deadline.Date = date
	deadline.Notes = validation.TrimmedOrNil(deadlineReq.Notes)
	deadline.TenderID = tenderId
	return nil
}
