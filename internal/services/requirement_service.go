package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/senyabanana/licitagora/internal/models"
	"github.com/senyabanana/licitagora/internal/repository"
	"github.com/senyabanana/licitagora/internal/validation"

	"github.com/google/uuid"
)

const requirementNotFoundMessage = "requirement not found"

type RequirementService struct {
	Repo      repository.RequirementRepository
	Tenders   repository.TenderRepository
	Documents repository.DocumentRepository
	logger    *slog.Logger
	now       func() time.Time
}

// NewRequirementService создаёт новый экземпляр RequirementService.
func NewRequirementService(repos repository.Repositories, logger *slog.Logger) *RequirementService {
	return &RequirementService{
		Repo:      repos.Requirements,
		Tenders:   repos.Tenders,
		Documents: repos.Documents,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetRequirements возвращает требования тендера.
func (s *RequirementService) GetRequirements(ctx context.Context, tenderId string) ([]models.Requirement, error) {
	if _, err := s.Tenders.GetTenderById(ctx, tenderId); err != nil {
		return nil, repoError(s.logger, err, tenderNotFoundMessage, "failed to get tender", "tender_id", tenderId)
	}
	reqs, err := s.Repo.GetRequirements(ctx, tenderId)
	if err != nil {
		return nil, storageFailure(s.logger, "failed to list requirements", err, "tender_id", tenderId)
	}
	return reqs, nil
}

// CreateRequirement создает требование вручную.
func (s *RequirementService) CreateRequirement(ctx context.Context, tenderId string, reqBody models.RequirementRequest) (*models.Requirement, error) {
	if _, err := s.Tenders.GetTenderById(ctx, tenderId); err != nil {
		return nil, repoError(s.logger, err, tenderNotFoundMessage, "failed to get tender", "tender_id", tenderId)
	}

	description, documentId, err := s.validateRequirement(ctx, tenderId, reqBody)
	if err != nil {
		return nil, err
	}

	now := s.now()
	req := &models.Requirement{
		ID:          uuid.New().String(),
		TenderID:    tenderId,
		Description: description,
		Category:    validation.TrimmedOrNil(reqBody.Category),
		Satisfied:   reqBody.Satisfied != nil && *reqBody.Satisfied,
		DocumentID:  documentId,
		Notes:       validation.TrimmedOrNil(reqBody.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.CreateRequirement(ctx, req); err != nil {
		return nil, storageFailure(s.logger, "failed to create requirement", err, "tender_id", tenderId)
	}
	return req, nil
}

// UpdateRequirement изменяет требование. Описание, документ и заметки перезаписываются;
// satisfied и category сохраняют прежнее значение, если не переданы.
func (s *RequirementService) UpdateRequirement(ctx context.Context, requirementId string, reqBody models.RequirementRequest) (*models.Requirement, error) {
	req, err := s.Repo.GetRequirementById(ctx, requirementId)
	if err != nil {
		return nil, repoError(s.logger, err, requirementNotFoundMessage, "failed to get requirement", "requirement_id", requirementId)
	}

	description, documentId, err := s.validateRequirement(ctx, req.TenderID, reqBody)
	if err != nil {
		return nil, err
	}

	req.Description = description
	req.DocumentID = documentId
	req.Notes = validation.TrimmedOrNil(reqBody.Notes)
	if reqBody.Satisfied != nil {
		req.Satisfied = *reqBody.Satisfied
	}
	if reqBody.Category != nil {
		req.Category = validation.TrimmedOrNil(reqBody.Category)
	}
	req.UpdatedAt = s.now()

	if err := s.Repo.UpdateRequirement(ctx, req); err != nil {
		return nil, repoError(s.logger, err, requirementNotFoundMessage, "failed to update requirement", "requirement_id", requirementId)
	}
	return req, nil
}

// DeleteRequirement удаляет требование.
func (s *RequirementService) DeleteRequirement(ctx context.Context, requirementId string) error {
	if err := s.Repo.DeleteRequirement(ctx, requirementId); err != nil {
		return repoError(s.logger, err, requirementNotFoundMessage, "failed to delete requirement", "requirement_id", requirementId)
	}
	return nil
}

// validateRequirement проверяет описание и принадлежность документа тому же тендеру.
func (s *RequirementService) validateRequirement(ctx context.Context, tenderId string, reqBody models.RequirementRequest) (string, *string, error) {
	var v validation.Violations
	description := strings.TrimSpace(reqBody.Description)
	v.Required("description", description)

	documentId := validation.TrimmedOrNil(reqBody.DocumentID)
	if documentId != nil {
		if _, err := uuid.Parse(*documentId); err != nil {
			v.Add("documentId must be a valid id")
			return description, nil, v.Err()
		}
		doc, err := s.Documents.GetTenderDocumentById(ctx, *documentId)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			v.Add("documentId does not reference an existing document")
		case err != nil:
			return "", nil, storageFailure(s.logger, "failed to check requirement document", err, "document_id", *documentId)
		case doc.TenderID != tenderId:
			v.Add("documentId must reference a document of the same tender")
		}
	}

	return description, documentId, v.Err()
}
