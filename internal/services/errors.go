package services

import (
	"errors"
	"log/slog"

	"github.com/senyabanana/licitagora/internal/models"
	"github.com/senyabanana/licitagora/internal/repository"
)

const internalErrorMessage = "internal server error"

// storageFailure пишет детали в лог и возвращает ошибку без внутренних подробностей.
func storageFailure(logger *slog.Logger, msg string, err error, attrs ...any) error {
	logger.Error(msg, append(attrs, "error", err)...)
	return models.NewStorageError(internalErrorMessage)
}

// repoError переводит ошибку репозитория в ошибку предметной области.
func repoError(logger *slog.Logger, err error, notFoundMsg, failMsg string, attrs ...any) error {
	if err == nil {
		return nil
	}
	var errResp *models.ErrorResponse
	if errors.As(err, &errResp) {
		return errResp
	}
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewNotFoundError(notFoundMsg)
	}
	return storageFailure(logger, failMsg, err, attrs...)
}
