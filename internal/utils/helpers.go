package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/senyabanana/licitagora/internal/models"
)

// SendJSON отправляет ответ в формате JSON
func SendJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	SendJSON(w, statusCode, models.ErrorResponse{StatusCode: statusCode, Message: message})
}

// SendServiceError отправляет ошибку сервиса; неизвестные ошибки скрываются за fallback-сообщением.
func SendServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, fallback string) {
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		logger.Warn("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", errorResponse.StatusCode,
			"error", errorResponse.Error())
		SendJSON(w, errorResponse.StatusCode, errorResponse)
		return
	}
	logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

// ParseLimitOffset обрабатывает limit и offset
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 100 {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [1:100]")
		}
	} else {
		limit = 20
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	} else {
		offset = 0
	}

	return limit, offset, nil
}

// ContainsStatus - функция для проверки перехода у тендеров
func ContainsStatus(validStatuses []models.TenderStatus, newStatus models.TenderStatus) bool {
	for _, validStatus := range validStatuses {
		if validStatus == newStatus {
			return true
		}
	}
	return false
}
