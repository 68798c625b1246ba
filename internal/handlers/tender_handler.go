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

// TenderHandler - структура для обработки HTTP-запросов по тендерам.
type TenderHandler struct {
	Service *services.TenderService
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewTenderHandler создаёт новый экземпляр TenderHandler.
func NewTenderHandler(service *services.TenderService, logger *slog.Logger, timeout time.Duration) *TenderHandler {
	return &TenderHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetTenders обрабатывает запросы для получения списка тендеров.
func (h *TenderHandler) GetTenders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	statuses := r.URL.Query()["status"]
	clientId := r.URL.Query().Get("clientId")

	tenders, err := h.Service.FetchTenders(ctx, limitStr, offsetStr, statuses, clientId)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to fetch tenders")
		return
	}

	utils.SendJSON(w, http.StatusOK, tenders)
}

// GetTender обрабатывает запросы для получения тендера.
func (h *TenderHandler) GetTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tender, err := h.Service.GetTender(ctx, r.PathValue("tenderId"))
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to get tender")
		return
	}

	utils.SendJSON(w, http.StatusOK, tender)
}

// CreateTender обрабатывает запросы для создания тендера.
func (h *TenderHandler) CreateTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var tenderReq models.TenderRequest
	if err := json.NewDecoder(r.Body).Decode(&tenderReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tender, err := h.Service.CreateTender(ctx, tenderReq)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to create tender")
		return
	}

	utils.SendJSON(w, http.StatusCreated, tender)
}

// EditTender обрабатывает запросы для изменения тендера.
func (h *TenderHandler) EditTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var tenderReq models.TenderRequest
	if err := json.NewDecoder(r.Body).Decode(&tenderReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tender, err := h.Service.EditTender(ctx, r.PathValue("tenderId"), tenderReq)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to update tender")
		return
	}

	utils.SendJSON(w, http.StatusOK, tender)
}

// UpdateTenderStatus обрабатывает запросы для изменения статуса тендера.
func (h *TenderHandler) UpdateTenderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderId := r.PathValue("tenderId")
	status := r.URL.Query().Get("status")

	tender, err := h.Service.UpdateTenderStatus(ctx, tenderId, status)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to update tender status")
		return
	}

	utils.SendJSON(w, http.StatusOK, tender)
}

// CloseTender обрабатывает запросы для подведения итогов тендера.
func (h *TenderHandler) CloseTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var closeReq models.TenderCloseRequest
	if err := json.NewDecoder(r.Body).Decode(&closeReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tender, err := h.Service.CloseTender(ctx, r.PathValue("tenderId"), closeReq)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to close tender")
		return
	}

	utils.SendJSON(w, http.StatusOK, tender)
}

// DeleteTender обрабатывает запросы для удаления тендера.
func (h *TenderHandler) DeleteTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteTender(ctx, r.PathValue("tenderId")); err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to delete tender")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTenderHistory обрабатывает запросы для получения истории статусов.
func (h *TenderHandler) GetTenderHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	history, err := h.Service.GetTenderHistory(ctx, r.PathValue("tenderId"))
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to get tender history")
		return
	}

	utils.SendJSON(w, http.StatusOK, history)
}
