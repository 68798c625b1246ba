package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"github.com/senyabanana/licitagora/internal/models"
	"github.com/senyabanana/licitagora/internal/repository"
	"github.com/senyabanana/licitagora/internal/storage"
	"github.com/senyabanana/licitagora/internal/utils"
	"github.com/senyabanana/licitagora/internal/validation"
)

const (
	taxIdLength           = 14
	duplicateTaxIdMessage = "a client with this tax id already exists"
)

type ClientService struct {
	Repo      repository.ClientRepository
	Documents repository.DocumentRepository
	files     storage.FileStorage
	logger    *slog.Logger
}

// NewClientService создаёт новый экземпляр ClientService.
func NewClientService(repos repository.Repositories, files storage.FileStorage, logger *slog.Logger) *ClientService {
	return &ClientService{
		Repo:      repos.Clients,
		Documents: repos.Documents,
		files:     files,
		logger:    logger,
	}
}

// FetchClients получает список клиентов.
func (s *ClientService) FetchClients(ctx context.Context, limitStr, offsetStr string) ([]models.Client, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError([]string{err.Error()})
	}
	clients, err := s.Repo.GetClients(ctx, limit, offset)
	if err != nil {
		return nil, storageFailure(s.logger, "failed to fetch clients", err)
	}
	return clients, nil
}

// GetClient получает клиента по ID.
func (s *ClientService) GetClient(ctx context.Context, clientId string) (*models.Client, error) {
	client, err := s.Repo.GetClientById(ctx, clientId)
	if err != nil {
		return nil, repoError(s.logger, err, clientNotFoundMessage, "failed to get client", "client_id", clientId)
	}
	return client, nil
}

// CreateClient создает нового клиента.
func (s *ClientService) CreateClient(ctx context.Context, clientReq models.ClientRequest) (*models.Client, error) {
	normalized, err := validateClient(clientReq)
	if err != nil {
		return nil, err
	}
	client, err := s.Repo.CreateClient(ctx, normalized)
	if err != nil {
		return nil, s.clientWriteError(err, "failed to create client")
	}
	return client, nil
}

// UpdateClient перезаписывает поля клиента.
func (s *ClientService) UpdateClient(ctx context.Context, clientId string, clientReq models.ClientRequest) (*models.Client, error) {
	normalized, err := validateClient(clientReq)
	if err != nil {
		return nil, err
	}
	client, err := s.Repo.UpdateClient(ctx, clientId, normalized)
	if err != nil {
		return nil, s.clientWriteError(err, "failed to update client", "client_id", clientId)
	}
	return client, nil
}

// DeleteClient удаляет клиента. Тендеры клиента остаются без ссылки на него,
// документы клиента удаляются вместе с файлами.
func (s *ClientService) DeleteClient(ctx context.Context, clientId string) error {
	docs, err := s.Documents.GetClientDocuments(ctx, clientId)
	if err != nil {
		return storageFailure(s.logger, "failed to list client documents", err, "client_id", clientId)
	}
	if err := s.Repo.DeleteClient(ctx, clientId); err != nil {
		return repoError(s.logger, err, clientNotFoundMessage, "failed to delete client", "client_id", clientId)
	}
	for _, doc := range docs {
		if err := s.files.Delete(ctx, doc.StoragePath); err != nil {
			s.logger.Warn("failed to remove stored file", "path", doc.StoragePath, "error", err)
		}
	}
	return nil
}

func (s *ClientService) clientWriteError(err error, failMsg string, attrs ...any) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return models.NewConflictError(duplicateTaxIdMessage)
	}
	return repoError(s.logger, err, clientNotFoundMessage, failMsg, attrs...)
}

// validateClient проверяет поля клиента и приводит их к хранимому виду.
func validateClient(req models.ClientRequest) (models.ClientRequest, error) {
	var v validation.Violations
	out := models.ClientRequest{
		LegalName: strings.TrimSpace(req.LegalName),
		TradeName: validation.TrimmedOrNil(req.TradeName),
		TaxID:     digitsOnly(req.TaxID),
		Email:     validation.TrimmedOrNil(req.Email),
		Phone:     validation.TrimmedOrNil(req.Phone),
		Address:   validation.TrimmedOrNil(req.Address),
	}

	v.Required("legalName", out.LegalName)
	if v.Required("taxId", req.TaxID) && len(out.TaxID) != taxIdLength {
		v.Add("taxId must have %d digits", taxIdLength)
	}
	if out.Email != nil && !strings.Contains(*out.Email, "@") {
		v.Add("email must be a valid address")
	}

	out.ActivitySectors = []string{}
	seen := map[string]bool{}
	for _, sector := range req.ActivitySectors {
		sector = strings.TrimSpace(sector)
		if sector == "" || seen[strings.ToLower(sector)] {
			continue
		}
		seen[strings.ToLower(sector)] = true
		out.ActivitySectors = append(out.ActivitySectors, sector)
	}

	return out, v.Err()
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
