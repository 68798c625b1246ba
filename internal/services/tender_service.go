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
	"github.com/senyabanana/licitagora/internal/storage"
	"github.com/senyabanana/licitagora/internal/utils"
	"github.com/senyabanana/licitagora/internal/validation"

	"github.com/google/uuid"
)

// allowedStatusTransition - допустимые переходы статусов; терминальные статусы переходов не имеют.
var allowedStatusTransition = map[models.TenderStatus][]models.TenderStatus{
	models.InAnalysisTender: {models.InAnalysisTender, models.InProgressTender, models.FinalizedTender, models.CancelledTender},
	models.InProgressTender: {models.InAnalysisTender, models.InProgressTender, models.FinalizedTender, models.CancelledTender},
	models.FinalizedTender:  {},
	models.CancelledTender:  {},
}

const (
	finalizedTenderMessage = "tender is finalized and can no longer be changed"
	cancelledTenderMessage = "tender is cancelled and its status can no longer be changed"
	tenderNotFoundMessage  = "tender not found"
)

type TenderService struct {
	Repo      repository.TenderRepository
	Clients   repository.ClientRepository
	Documents repository.DocumentRepository
	tx        repository.Transactor
	files     storage.FileStorage
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewTenderService создаёт новый экземпляр TenderService.
func NewTenderService(repos repository.Repositories, tx repository.Transactor, files storage.FileStorage, logger *slog.Logger, m *metrics.Metrics) *TenderService {
	return &TenderService{
		Repo:      repos.Tenders,
		Clients:   repos.Clients,
		Documents: repos.Documents,
		tx:        tx,
		files:     files,
		logger:    logger,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// FetchTenders получает список тендеров.
func (s *TenderService) FetchTenders(ctx context.Context, limitStr, offsetStr string, statuses []string, clientId string) ([]models.Tender, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError([]string{err.Error()})
	}

	var v validation.Violations
	for _, status := range statuses {
		if !utils.ContainsStatus(models.TenderStatuses, models.TenderStatus(status)) {
			v.Add("unsupported status: %s", status)
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	filter := models.TenderFilter{Limit: limit, Offset: offset, Statuses: statuses, ClientID: clientId}
	tenders, err := s.Repo.GetTenders(ctx, filter)
	if err != nil {
		return nil, storageFailure(s.logger, "failed to fetch tenders", err)
	}
	return tenders, nil
}

// GetTender получает тендер по ID.
func (s *TenderService) GetTender(ctx context.Context, tenderId string) (*models.Tender, error) {
	tender, err := s.Repo.GetTenderById(ctx, tenderId)
	if err != nil {
		return nil, repoError(s.logger, err, tenderNotFoundMessage, "failed to get tender", "tender_id", tenderId)
	}
	return tender, nil
}

// CreateTender создает новый тендер в статусе EM_ANALISE.
func (s *TenderService) CreateTender(ctx context.Context, tenderReq models.TenderRequest) (*models.Tender, error) {
	fields, err := validateTender(tenderReq)
	if err != nil {
		return nil, err
	}
	if err := s.checkClientExists(ctx, fields.ClientID); err != nil {
		return nil, err
	}

	tender, err := s.Repo.CreateTender(ctx, fields)
	if err != nil {
		return nil, storageFailure(s.logger, "failed to create tender", err)
	}
	s.logger.Info("tender created", "tender_id", tender.ID, "number", tender.Number)
	return tender, nil
}

// EditTender перезаписывает поля тендера; завершённый тендер не редактируется.
func (s *TenderService) EditTender(ctx context.Context, tenderId string, tenderReq models.TenderRequest) (*models.Tender, error) {
	current, err := s.GetTender(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	if current.IsFinalized() {
		return nil, models.NewConflictError(finalizedTenderMessage)
	}

	fields, err := validateTender(tenderReq)
	if err != nil {
		return nil, err
	}
	if err := s.checkClientExists(ctx, fields.ClientID); err != nil {
		return nil, err
	}

	tender, err := s.Repo.EditTender(ctx, tenderId, fields)
	if err != nil {
		return nil, repoError(s.logger, err, tenderNotFoundMessage, "failed to update tender", "tender_id", tenderId)
	}
	return tender, nil
}

// UpdateTenderStatus меняет статус тендера и пишет запись в историю в одной транзакции.
func (s *TenderService) UpdateTenderStatus(ctx context.Context, tenderId, status string) (*models.Tender, error) {
	newStatus := models.TenderStatus(strings.ToUpper(strings.TrimSpace(status)))

	var updated *models.Tender
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := repos.Tenders.GetTenderById(ctx, tenderId)
		if err != nil {
			return err
		}
		if err := checkStatusTransition(current.Status, newStatus); err != nil {
			return err
		}

		updated, err = repos.Tenders.UpdateTenderStatus(ctx, tenderId, newStatus)
		if err != nil {
			return err
		}
		if current.Status == newStatus {
			return nil
		}
		return repos.Tenders.AddStatusChange(ctx, models.TenderStatusChange{
			ID:         uuid.New().String(),
			TenderID:   tenderId,
			FromStatus: current.Status,
			ToStatus:   newStatus,
			ChangedAt:  s.now(),
		})
	})
	if err != nil {
		return nil, repoError(s.logger, err, tenderNotFoundMessage, "failed to update tender status", "tender_id", tenderId)
	}
	return updated, nil
}

// checkStatusTransition проверяет переход: сначала терминальность текущего статуса, затем значение нового.
func checkStatusTransition(current, next models.TenderStatus) error {
	switch current {
	case models.FinalizedTender:
		return models.NewConflictError(finalizedTenderMessage)
	case models.CancelledTender:
		return models.NewConflictError(cancelledTenderMessage)
	}
	if !utils.ContainsStatus(models.TenderStatuses, next) {
		return models.NewValidationError([]string{fmt.Sprintf("status must be one of %s", joinStatuses(models.TenderStatuses))})
	}
	if !utils.ContainsStatus(allowedStatusTransition[current], next) {
		return models.NewConflictError(fmt.Sprintf("transition from %s to %s is not allowed", current, next))
	}
	return nil
}

// CloseTender фиксирует итог тендера (выигран/проигран) и переводит его в FINALIZADA.
func (s *TenderService) CloseTender(ctx context.Context, tenderId string, closeReq models.TenderCloseRequest) (*models.Tender, error) {
	var closed *models.Tender
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := repos.Tenders.GetTenderById(ctx, tenderId)
		if err != nil {
			return err
		}
		switch current.Status {
		case models.FinalizedTender:
			return models.NewConflictError("tender is already finalized")
		case models.CancelledTender:
			return models.NewConflictError("a cancelled tender cannot be closed")
		}

		closing, err := validateClosing(closeReq)
		if err != nil {
			return err
		}
		closing.ClosedAt = s.now()

		closed, err = repos.Tenders.CloseTender(ctx, tenderId, closing)
		if err != nil {
			return err
		}
		return repos.Tenders.AddStatusChange(ctx, models.TenderStatusChange{
			ID:         uuid.New().String(),
			TenderID:   tenderId,
			FromStatus: current.Status,
			ToStatus:   models.FinalizedTender,
			ChangedAt:  closing.ClosedAt,
		})
	})
	if err != nil {
		return nil, repoError(s.logger, err, tenderNotFoundMessage, "failed to close tender", "tender_id", tenderId)
	}

	outcome := "lost"
	if closed.Won != nil && *closed.Won {
		outcome = "won"
	}
	s.metrics.TendersClosed.WithLabelValues(outcome).Inc()
	s.logger.Info("tender closed", "tender_id", tenderId, "outcome", outcome)
	return closed, nil
}

// DeleteTender удаляет тендер вместе с документами; файлы удаляются после удаления строк.
func (s *TenderService) DeleteTender(ctx context.Context, tenderId string) error {
	current, err := s.GetTender(ctx, tenderId)
	if err != nil {
		return err
	}
	if current.IsFinalized() {
		return models.NewConflictError(finalizedTenderMessage)
	}

	docs, err := s.Documents.GetTenderDocuments(ctx, tenderId)
	if err != nil {
		return storageFailure(s.logger, "failed to list tender documents", err, "tender_id", tenderId)
	}
	if err := s.Repo.DeleteTender(ctx, tenderId); err != nil {
		return repoError(s.logger, err, tenderNotFoundMessage, "failed to delete tender", "tender_id", tenderId)
	}

	for _, doc := range docs {
		if err := s.files.Delete(ctx, doc.StoragePath); err != nil {
			s.metrics.OrphanedFiles.Inc()
			s.logger.Warn("failed to remove stored file", "path", doc.StoragePath, "error", err)
		}
	}
	return nil
}

// GetTenderHistory возвращает историю смены статусов.
func (s *TenderService) GetTenderHistory(ctx context.Context, tenderId string) ([]models.TenderStatusChange, error) {
	if _, err := s.GetTender(ctx, tenderId); err != nil {
		return nil, err
	}
	history, err := s.Repo.GetStatusHistory(ctx, tenderId)
	if err != nil {
		return nil, storageFailure(s.logger, "failed to get tender history", err, "tender_id", tenderId)
	}
	return history, nil
}

func (s *TenderService) checkClientExists(ctx context.Context, clientId string) error {
	_, err := s.Clients.GetClientById(ctx, clientId)
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewNotFoundError(clientNotFoundMessage)
	}
	return storageFailure(s.logger, "failed to check client", err, "client_id", clientId)
}

// validateTender проверяет все обязательные поля и возвращает все нарушения сразу.
func validateTender(req models.TenderRequest) (models.TenderFields, error) {
	var v validation.Violations
	fields := models.TenderFields{
		Number:         strings.TrimSpace(req.Number),
		ClientID:       strings.TrimSpace(req.ClientID),
		IssuingBody:    strings.TrimSpace(req.IssuingBody),
		Object:         strings.TrimSpace(req.Object),
		Modality:       strings.TrimSpace(req.Modality),
		ActivitySector: strings.TrimSpace(req.ActivitySector),
	}

	v.Required("number", fields.Number)
	if v.Required("clientId", fields.ClientID) {
		if _, err := uuid.Parse(fields.ClientID); err != nil {
			v.Add("clientId must be a valid id")
		}
	}
	v.Required("issuingBody", fields.IssuingBody)
	v.Required("object", fields.Object)

	opening, openingOk := v.Date("openingDate", req.OpeningDate)
	closing, closingOk := v.OptionalDate("closingDate", req.ClosingDate)
	if openingOk && closingOk && closing.Before(opening) {
		v.Add("closing date must be after opening date")
	}
	fields.OpeningDate = opening
	if closingOk {
		fields.ClosingDate = &closing
	}

	fields.EstimatedValue, _ = v.Number("estimatedValue", req.EstimatedValue)
	fields.EstimatedProfit, _ = v.Number("estimatedProfit", req.EstimatedProfit)
	v.Required("modality", fields.Modality)
	v.Required("activitySector", fields.ActivitySector)

	return fields, v.Err()
}

// validateClosing проверяет итог тендера; причина проигрыша обязательна и хранится обрезанной.
func validateClosing(req models.TenderCloseRequest) (models.TenderClosing, error) {
	var v validation.Violations
	var closing models.TenderClosing

	closing.FinalValue, _ = v.Number("finalValue", req.FinalValue)
	closing.FinalProfit, _ = v.Number("finalProfit", req.FinalProfit)

	if req.Won == nil {
		v.Add("won must be a boolean")
	} else {
		closing.Won = *req.Won
		if !closing.Won {
			closing.LossReason = validation.TrimmedOrNil(req.LossReason)
			if closing.LossReason == nil {
				v.Add("loss reason required when the tender was lost")
			}
		}
	}

	return closing, v.Err()
}

func joinStatuses(statuses []models.TenderStatus) string {
	parts := make([]string, len(statuses))
	for i, status := range statuses {
		parts[i] = string(status)
	}
	return strings.Join(parts, ", ")
}
