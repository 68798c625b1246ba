package models

import (
	"errors"
	"net/http"
	"strings"
)

// ErrorKind - категория ошибки предметной области.
type ErrorKind string

const (
	ValidationErrorKind ErrorKind = "validation" // Некорректные входные данные
	ConflictErrorKind   ErrorKind = "conflict"   // Нарушение инварианта состояния
	NotFoundErrorKind   ErrorKind = "not_found"  // Сущность не найдена
	StorageErrorKind    ErrorKind = "storage"    // Сбой хранилища
)

// ErrorResponse описывает ошибку с кодом, категорией и сообщением.
type ErrorResponse struct {
	StatusCode int       `json:"-"`
	Kind       ErrorKind `json:"-"`
	Message    string    `json:"error"`
	Details    []string  `json:"details,omitempty"`
}

// NewErrorResponse создает новую ошибку с кодом и сообщением.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Kind:       kindForStatus(statusCode),
		Message:    message}
}

// NewValidationError собирает все нарушенные правила в одну ошибку.
func NewValidationError(violations []string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Kind:       ValidationErrorKind,
		Message:    "validation failed",
		Details:    violations,
	}
}

func NewConflictError(message string) *ErrorResponse {
	return &ErrorResponse{StatusCode: http.StatusConflict, Kind: ConflictErrorKind, Message: message}
}

func NewNotFoundError(message string) *ErrorResponse {
	return &ErrorResponse{StatusCode: http.StatusNotFound, Kind: NotFoundErrorKind, Message: message}
}

// NewStorageError скрывает детали сбоя: они пишутся в лог, а клиент получает общее сообщение.
func NewStorageError(message string) *ErrorResponse {
	return &ErrorResponse{StatusCode: http.StatusInternalServerError, Kind: StorageErrorKind, Message: message}
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// IsKind проверяет, что err является ErrorResponse заданной категории.
func IsKind(err error, kind ErrorKind) bool {
	var errResp *ErrorResponse
	return errors.As(err, &errResp) && errResp.Kind == kind
}

func kindForStatus(statusCode int) ErrorKind {
	switch statusCode {
	case http.StatusBadRequest:
		return ValidationErrorKind
	case http.StatusConflict:
		return ConflictErrorKind
	case http.StatusNotFound:
		return NotFoundErrorKind
	default:
		return StorageErrorKind
	}
}
