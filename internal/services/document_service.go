package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/senyabanana/licitagora/internal/extractor"
	"github.com/senyabanana/licitagora/internal/metrics"
	"github.com/senyabanana/licitagora/internal/models"
	"github.com/senyabanana/licitagora/internal/repository"
	"github.com/senyabanana/licitagora/internal/storage"
	"github.com/senyabanana/licitagora/internal/validation"

	"github.com/google/uuid"
)

const (
	duplicateNoticeMessage  = "a notice document already exists for this tender"
	documentNotFoundMessage = "document not found"
	clientNotFoundMessage   = "client not found"
	defaultContentType      = "application/octet-stream"
)

// DocumentService управляет документами тендеров и клиентов.
// Инварианты: не более одного извещения (EDITAL) на тендер; удаление извещения
// удаляет все требования тендера в той же транзакции.
type DocumentService struct {
	Repo         repository.DocumentRepository
	Tenders      repository.TenderRepository
	Clients      repository.ClientRepository
	Requirements repository.RequirementRepository
	tx           repository.Transactor
	files        storage.FileStorage
	text         extractor.TextExtractor
	logger       *slog.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewDocumentService создаёт новый экземпляр DocumentService.
func NewDocumentService(
	repos repository.Repositories,
	tx repository.Transactor,
	files storage.FileStorage,
	text extractor.TextExtractor,
	logger *slog.Logger,
	m *metrics.Metrics,
) *DocumentService {
	return &DocumentService{
		Repo:         repos.Documents,
		Tenders:      repos.Tenders,
		Clients:      repos.Clients,
		Requirements: repos.Requirements,
		tx:           tx,
		files:        files,
		text:         text,
		logger:       logger,
		metrics:      m,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// GetTenderDocuments возвращает документы тендера.
func (s *DocumentService) GetTenderDocuments(ctx context.Context, tenderId string) ([]models.TenderDocument, error) {
	if _, err := s.Tenders.GetTenderById(ctx, tenderId); err != nil {
		return nil, repoError(s.logger, err, tenderNotFoundMessage, "failed to get tender", "tender_id", tenderId)
	}
	docs, err := s.Repo.GetTenderDocuments(ctx, tenderId)
	if err != nil {
		return nil, storageFailure(s.logger, "failed to list tender documents", err, "tender_id", tenderId)
	}
	return docs, nil
}

// GetTenderDocument получает документ тендера по ID.
func (s *DocumentService) GetTenderDocument(ctx context.Context, documentId string) (*models.TenderDocument, error) {
	doc, err := s.Repo.GetTenderDocumentById(ctx, documentId)
	if err != nil {
		return nil, repoError(s.logger, err, documentNotFoundMessage, "failed to get tender document", "document_id", documentId)
	}
	return doc, nil
}

// OpenTenderDocument открывает сохранённый файл документа тендера.
func (s *DocumentService) OpenTenderDocument(ctx context.Context, documentId string) (*models.TenderDocument, io.ReadCloser, error) {
	doc, err := s.GetTenderDocument(ctx, documentId)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.files.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, storageFailure(s.logger, "failed to open stored file", err, "document_id", documentId)
	}
	return doc, f, nil
}

// UploadTenderDocument сохраняет файл и строку документа. Для извещения
// дополнительно извлекает требования; сбой извлечения загрузку не прерывает.
func (s *DocumentService) UploadTenderDocument(ctx context.Context, tenderId string, upload models.TenderDocumentUpload) (*models.TenderDocumentUploadResult, error) {
	docType := models.TenderDocumentType(strings.ToUpper(strings.TrimSpace(upload.Type)))

	var v validation.Violations
	if v.Required("type", string(docType)) && !docType.IsValid() {
		v.Add("type must be one of EDITAL, PROPOSTA, ATA, CONTRATO, OUTRO")
	}
	validateFile(&v, upload.File)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.Tenders.GetTenderById(ctx, tenderId); err != nil {
		return nil, repoError(s.logger, err, tenderNotFoundMessage, "failed to get tender", "tender_id", tenderId)
	}

	if docType == models.NoticeDocument {
		_, err := s.Repo.GetNoticeDocument(ctx, tenderId)
		switch {
		case err == nil:
			return nil, models.NewConflictError(duplicateNoticeMessage)
		case !errors.Is(err, repository.ErrNotFound):
			return nil, storageFailure(s.logger, "failed to check notice document", err, "tender_id", tenderId)
		}
	}

	doc := &models.TenderDocument{
		ID:          uuid.New().String(),
		TenderID:    tenderId,
		Type:        docType,
		FileName:    strings.TrimSpace(upload.File.FileName),
		ContentType: contentTypeOf(upload.File),
		Size:        int64(len(upload.File.Content)),
		Description: validation.TrimmedOrNil(upload.Description),
		UploadedAt:  s.now(),
	}
	doc.StoragePath = fmt.Sprintf("tenders/%s/%s-%s", tenderId, doc.ID, storage.SanitizeFileName(doc.FileName))

	if _, err := s.files.Save(ctx, doc.StoragePath, bytes.NewReader(upload.File.Content)); err != nil {
		return nil, storageFailure(s.logger, "failed to store tender document", err, "tender_id", tenderId)
	}
	if err := s.Repo.CreateTenderDocument(ctx, doc); err != nil {
		s.removeFile(ctx, doc.StoragePath)
		if errors.Is(err, repository.ErrDuplicate) && doc.IsNotice() {
			return nil, models.NewConflictError(duplicateNoticeMessage)
		}
		return nil, repoError(s.logger, err, tenderNotFoundMessage, "failed to save tender document", "tender_id", tenderId)
	}

	result := &models.TenderDocumentUploadResult{Document: doc}
	if doc.IsNotice() && s.text.CanExtract(upload.File) {
		result.RequirementsGenerated = s.generateRequirements(ctx, doc, upload.File)
	}

	s.logger.Info("tender document uploaded",
		"tender_id", tenderId,
		"document_id", doc.ID,
		"type", doc.Type,
		"requirements_generated", result.RequirementsGenerated)
	return result, nil
}

// generateRequirements извлекает требования из текста извещения; ошибки только логируются.
func (s *DocumentService) generateRequirements(ctx context.Context, doc *models.TenderDocument, file models.UploadedFile) int {
	text, err := s.text.ExtractText(file)
	if err != nil {
		s.metrics.ExtractionFailures.Inc()
		s.logger.Warn("failed to extract notice text", "document_id", doc.ID, "error", err)
		return 0
	}

	created := 0
	for _, candidate := range extractor.Extract(text) {
		category := candidate.Type
		now := s.now()
		req := &models.Requirement{
			ID:          uuid.New().String(),
			TenderID:    doc.TenderID,
			Description: candidate.Description,
			Category:    &category,
			Satisfied:   false,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.Requirements.CreateRequirement(ctx, req); err != nil {
			s.logger.Warn("failed to save extracted requirement", "document_id", doc.ID, "error", err)
			continue
		}
		created++
	}
	s.metrics.RequirementsExtracted.Add(float64(created))
	return created
}

// DeleteTenderDocument удаляет документ тендера. Удаление извещения и требований
// тендера выполняется одной транзакцией; файл удаляется только после фиксации.
func (s *DocumentService) DeleteTenderDocument(ctx context.Context, documentId string) (*models.TenderDocumentDeleteResult, error) {
	doc, err := s.GetTenderDocument(ctx, documentId)
	if err != nil {
		return nil, err
	}

	result := &models.TenderDocumentDeleteResult{Document: doc}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if doc.IsNotice() {
			deleted, err := repos.Requirements.DeleteTenderRequirements(ctx, doc.TenderID)
			if err != nil {
				return err
			}
			result.Cascaded = true
			result.RequirementsDeleted = deleted
		}
		return repos.Documents.DeleteTenderDocument(ctx, doc.ID)
	})
	if err != nil {
		return nil, repoError(s.logger, err, documentNotFoundMessage, "failed to delete tender document", "document_id", documentId)
	}

	s.removeFile(ctx, doc.StoragePath)
	s.logger.Info("tender document deleted",
		"document_id", doc.ID,
		"tender_id", doc.TenderID,
		"cascaded", result.Cascaded,
		"requirements_deleted", result.RequirementsDeleted)
	return result, nil
}

// GetDocumentTypes возвращает справочник типов документов клиента.
func (s *DocumentService) GetDocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	types, err := s.Repo.GetDocumentTypes(ctx)
	if err != nil {
		return nil, storageFailure(s.logger, "failed to list document types", err)
	}
	return types, nil
}

// GetClientDocuments возвращает документы клиента с числом дней до истечения срока.
func (s *DocumentService) GetClientDocuments(ctx context.Context, clientId string) ([]models.ClientDocument, error) {
	if _, err := s.Clients.GetClientById(ctx, clientId); err != nil {
		return nil, repoError(s.logger, err, clientNotFoundMessage, "failed to get client", "client_id", clientId)
	}
	docs, err := s.Repo.GetClientDocuments(ctx, clientId)
	if err != nil {
		return nil, storageFailure(s.logger, "failed to list client documents", err, "client_id", clientId)
	}
	today := s.now()
	for i := range docs {
		docs[i].DaysToExpiry = daysUntil(today, docs[i].ExpiresAt)
	}
	return docs, nil
}

// OpenClientDocument открывает сохранённый файл документа клиента.
func (s *DocumentService) OpenClientDocument(ctx context.Context, documentId string) (*models.ClientDocument, io.ReadCloser, error) {
	doc, err := s.Repo.GetClientDocumentById(ctx, documentId)
	if err != nil {
		return nil, nil, repoError(s.logger, err, documentNotFoundMessage, "failed to get client document", "document_id", documentId)
	}
	f, err := s.files.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, storageFailure(s.logger, "failed to open stored file", err, "document_id", documentId)
	}
	return doc, f, nil
}

// UploadClientDocument сохраняет документ клиента со ссылкой на справочник типов.
func (s *DocumentService) UploadClientDocument(ctx context.Context, clientId string, upload models.ClientDocumentUpload) (*models.ClientDocument, error) {
	var v validation.Violations
	if upload.DocumentTypeID <= 0 {
		v.Add("documentTypeId is required")
	}
	expiresAt, hasExpiry := v.OptionalDate("expiresAt", upload.ExpiresAt)
	validateFile(&v, upload.File)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.Clients.GetClientById(ctx, clientId); err != nil {
		return nil, repoError(s.logger, err, clientNotFoundMessage, "failed to get client", "client_id", clientId)
	}
	docType, err := s.Repo.GetDocumentTypeById(ctx, upload.DocumentTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewValidationError([]string{"documentTypeId does not exist in the document type catalog"})
		}
		return nil, storageFailure(s.logger, "failed to get document type", err)
	}

	doc := &models.ClientDocument{
		ID:               uuid.New().String(),
		ClientID:         clientId,
		DocumentTypeID:   docType.ID,
		DocumentTypeName: docType.Name,
		FileName:         strings.TrimSpace(upload.File.FileName),
		ContentType:      contentTypeOf(upload.File),
		Size:             int64(len(upload.File.Content)),
		UploadedAt:       s.now(),
	}
	if hasExpiry {
		doc.ExpiresAt = &expiresAt
		doc.DaysToExpiry = daysUntil(doc.UploadedAt, doc.ExpiresAt)
	}
	doc.StoragePath = fmt.Sprintf("clients/%s/%s-%s", clientId, doc.ID, storage.SanitizeFileName(doc.FileName))

	if _, err := s.files.Save(ctx, doc.StoragePath, bytes.NewReader(upload.File.Content)); err != nil {
		return nil, storageFailure(s.logger, "failed to store client document", err, "client_id", clientId)
	}
	if err := s.Repo.CreateClientDocument(ctx, doc); err != nil {
		s.removeFile(ctx, doc.StoragePath)
		return nil, storageFailure(s.logger, "failed to save client document", err, "client_id", clientId)
	}
	return doc, nil
}

// DeleteClientDocument удаляет строку документа клиента, затем файл.
func (s *DocumentService) DeleteClientDocument(ctx context.Context, documentId string) error {
	doc, err := s.Repo.GetClientDocumentById(ctx, documentId)
	if err != nil {
		return repoError(s.logger, err, documentNotFoundMessage, "failed to get client document", "document_id", documentId)
	}
	if err := s.Repo.DeleteClientDocument(ctx, documentId); err != nil {
		return repoError(s.logger, err, documentNotFoundMessage, "failed to delete client document", "document_id", documentId)
	}
	s.removeFile(ctx, doc.StoragePath)
	return nil
}

// removeFile удаляет файл; сбой оставляет файл-сироту и только логируется.
func (s *DocumentService) removeFile(ctx context.Context, path string) {
	if err := s.files.Delete(ctx, path); err != nil {
		s.metrics.OrphanedFiles.Inc()
		s.logger.Warn("failed to remove stored file", "path", path, "error", err)
	}
}

func validateFile(v *validation.Violations, file models.UploadedFile) {
	v.Required("file name", file.FileName)
	if len(file.Content) == 0 {
		v.Add("file must not be empty")
	}
}

func contentTypeOf(file models.UploadedFile) string {
	if ct := strings.TrimSpace(file.ContentType); ct != "" {
		return ct
	}
	return defaultContentType
}

// daysUntil считает полные календарные дни от today до даты истечения.
func daysUntil(today time.Time, expiresAt *time.Time) *int {
	if expiresAt == nil {
		return nil
	}
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(expiresAt.Year(), expiresAt.Month(), expiresAt.Day(), 0, 0, 0, 0, time.UTC)
	days := int(math.Round(to.Sub(from).Hours() / 24))
	return &days
}
