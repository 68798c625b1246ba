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

// RequirementHandler - структура для обработки HTTP-запросов по требованиям.
type RequirementHandler struct {
	Service *services.RequirementService
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewRequirementHandler создаёт новый экземпляр RequirementHandler.
func NewRequirementHandler(service *services.RequirementService, logger *slog.Logger, timeout time.Duration) *RequirementHandler {
	return &RequirementHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetRequirements обрабатывает запросы для получения требований тендера.
func (h *RequirementHandler) GetRequirements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	reqs, err := h.Service.GetRequirements(ctx, r.PathValue("tenderId"))
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to fetch requirements")
		return
	}

	utils.SendJSON(w, http.StatusOK, reqs)
}

// CreateRequirement обрабатывает запросы для создания требования.
func (h *RequirementHandler) CreateRequirement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var reqBody models.RequirementRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.CreateRequirement(ctx, r.PathValue("tenderId"), reqBody)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to create requirement")
		return
	}

	utils.SendJSON(w, http.StatusCreated, req)
}

// UpdateRequirement обрабатывает запросы для изменения требования.
func (h *RequirementHandler) UpdateRequirement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var reqBody models.RequirementRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.UpdateRequirement(ctx, r.PathValue("requirementId"), reqBody)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to update requirement")
		return
	}

	utils.SendJSON(w, http.StatusOK, req)
}

// DeleteRequirement обрабатывает запросы для удаления требования.
func (h *RequirementHandler) DeleteRequirement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteRequirement(ctx, r.PathValue("requirementId")); err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to delete requirement")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
