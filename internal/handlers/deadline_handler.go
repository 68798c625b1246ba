package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/senyabanana/licitagora/internal/models"
	"github.com/senyabanana/licitagora/internal/services"
	"github.com/senyabanana/licitagora/internal/utils"
)

// DeadlineHandler - структура для обработки HTTP-запросов по дедлайнам и отчётам.
type DeadlineHandler struct {
	Service *services.DeadlineService
	Reports *services.ReportService
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewDeadlineHandler создаёт новый экземпляр DeadlineHandler.
func NewDeadlineHandler(service *services.DeadlineService, reports *services.ReportService, logger *slog.Logger, timeout time.Duration) *DeadlineHandler {
	return &DeadlineHandler{
		Service: service,
		Reports: reports,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetDeadlines обрабатывает запросы для получения дедлайнов в окне дат.
func (h *DeadlineHandler) GetDeadlines(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	deadlines, err := h.Service.GetDeadlines(ctx, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to fetch deadlines")
		return
	}

	utils.SendJSON(w, http.StatusOK, deadlines)
}

// GetDeadline обрабатывает запросы для получения дедлайна.
func (h *DeadlineHandler) GetDeadline(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	deadline, err := h.Service.GetDeadline(ctx, r.PathValue("deadlineId"))
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to get deadline")
		return
	}

	utils.SendJSON(w, http.StatusOK, deadline)
}

// CreateDeadline обрабатывает запросы для создания дедлайна.
func (h *DeadlineHandler) CreateDeadline(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var deadlineReq models.DeadlineRequest
	if err := json.NewDecoder(r.Body).Decode(&deadlineReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deadline, err := h.Service.CreateDeadline(ctx, deadlineReq)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to create deadline")
		return
	}

	utils.SendJSON(w, http.StatusCreated, deadline)
}

// UpdateDeadline обрабатывает запросы для изменения дедлайна.
func (h *DeadlineHandler) UpdateDeadline(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var deadlineReq models.DeadlineRequest
	if err := json.NewDecoder(r.Body).Decode(&deadlineReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deadline, err := h.Service.UpdateDeadline(ctx, r.PathValue("deadlineId"), deadlineReq)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to update deadline")
		return
	}

	utils.SendJSON(w, http.StatusOK, deadline)
}

// DeleteDeadline обрабатывает запросы для удаления дедлайна.
func (h *DeadlineHandler) DeleteDeadline(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteDeadline(ctx, r.PathValue("deadlineId")); err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to delete deadline")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportDeadlines создаёт дедлайны из дат закрытия тендеров в работе.
func (h *DeadlineHandler) ImportDeadlines(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	result, err := h.Service.ImportFromTenders(ctx)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to import deadlines")
		return
	}

	utils.SendJSON(w, http.StatusOK, result)
}

// GetSummary обрабатывает запросы для получения сводного отчёта.
func (h *DeadlineHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	summary, err := h.Reports.GetSummary(ctx)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to build summary")
		return
	}

	utils.SendJSON(w, http.StatusOK, summary)
}
