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

// ClientHandler - структура для обработки HTTP-запросов по клиентам.
type ClientHandler struct {
	Service *services.ClientService
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewClientHandler создаёт новый экземпляр ClientHandler.
func NewClientHandler(service *services.ClientService, logger *slog.Logger, timeout time.Duration) *ClientHandler {
	return &ClientHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetClients обрабатывает запросы для получения списка клиентов.
func (h *ClientHandler) GetClients(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	clients, err := h.Service.FetchClients(ctx, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to fetch clients")
		return
	}

	utils.SendJSON(w, http.StatusOK, clients)
}

// GetClient обрабатывает запросы для получения клиента.
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	client, err := h.Service.GetClient(ctx, r.PathValue("clientId"))
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to get client")
		return
	}

	utils.SendJSON(w, http.StatusOK, client)
}

// CreateClient обрабатывает запросы для создания клиента.
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var clientReq models.ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&clientReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.Service.CreateClient(ctx, clientReq)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to create client")
		return
	}

	utils.SendJSON(w, http.StatusCreated, client)
}

// UpdateClient обрабатывает запросы для изменения клиента.
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var clientReq models.ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&clientReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.Service.UpdateClient(ctx, r.PathValue("clientId"), clientReq)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to update client")
		return
	}

	utils.SendJSON(w, http.StatusOK, client)
}

// DeleteClient обрабатывает запросы для удаления клиента.
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteClient(ctx, r.PathValue("clientId")); err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to delete client")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
