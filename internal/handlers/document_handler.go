package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/senyabanana/licitagora/internal/models"
	"github.com/senyabanana/licitagora/internal/services"
	"github.com/senyabanana/licitagora/internal/utils"
)

// DocumentHandler - структура для обработки загрузок и скачиваний документов.
type DocumentHandler struct {
	Service        *services.DocumentService
	Logger         *slog.Logger
	Timeout        time.Duration
	MaxUploadBytes int64
}

// NewDocumentHandler создаёт новый экземпляр DocumentHandler.
func NewDocumentHandler(service *services.DocumentService, logger *slog.Logger, timeout time.Duration, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{
		Service:        service,
		Logger:         logger,
		Timeout:        timeout,
		MaxUploadBytes: maxUploadBytes,
	}
}

// GetTenderDocuments обрабатывает запросы для получения документов тендера.
func (h *DocumentHandler) GetTenderDocuments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	docs, err := h.Service.GetTenderDocuments(ctx, r.PathValue("tenderId"))
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to fetch tender documents")
		return
	}

	utils.SendJSON(w, http.StatusOK, docs)
}

// UploadTenderDocument обрабатывает multipart-загрузку документа тендера.
// Для извещения в ответе возвращается число созданных требований.
func (h *DocumentHandler) UploadTenderDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	file, err := h.readUpload(w, r)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	upload := models.TenderDocumentUpload{
		Type: r.FormValue("type"),
		File: file,
	}
	if description := r.FormValue("description"); description != "" {
		upload.Description = &description
	}

	result, err := h.Service.UploadTenderDocument(ctx, r.PathValue("tenderId"), upload)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to upload tender document")
		return
	}

	utils.SendJSON(w, http.StatusCreated, result)
}

// DownloadTenderDocument отдаёт содержимое документа тендера.
func (h *DocumentHandler) DownloadTenderDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	doc, content, err := h.Service.OpenTenderDocument(ctx, r.PathValue("documentId"))
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to download tender document")
		return
	}
	defer content.Close()

	h.sendFile(w, doc.FileName, doc.ContentType, doc.Size, content)
}

// DeleteTenderDocument обрабатывает запросы для удаления документа тендера.
func (h *DocumentHandler) DeleteTenderDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	result, err := h.Service.DeleteTenderDocument(ctx, r.PathValue("documentId"))
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to delete tender document")
		return
	}

	utils.SendJSON(w, http.StatusOK, result)
}

// GetDocumentTypes обрабатывает запросы для получения справочника типов документов.
func (h *DocumentHandler) GetDocumentTypes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	types, err := h.Service.GetDocumentTypes(ctx)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to fetch document types")
		return
	}

	utils.SendJSON(w, http.StatusOK, types)
}

// GetClientDocuments обрабатывает запросы для получения документов клиента.
func (h *DocumentHandler) GetClientDocuments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	docs, err := h.Service.GetClientDocuments(ctx, r.PathValue("clientId"))
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to fetch client documents")
		return
	}

	utils.SendJSON(w, http.StatusOK, docs)
}

// UploadClientDocument обрабатывает multipart-загрузку документа клиента.
func (h *DocumentHandler) UploadClientDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	file, err := h.readUpload(w, r)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	documentTypeId, err := strconv.Atoi(r.FormValue("documentTypeId"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "documentTypeId must be an integer")
		return
	}

	upload := models.ClientDocumentUpload{
		DocumentTypeID: documentTypeId,
		ExpiresAt:      r.FormValue("expiresAt"),
		File:           file,
	}

	doc, err := h.Service.UploadClientDocument(ctx, r.PathValue("clientId"), upload)
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to upload client document")
		return
	}

	utils.SendJSON(w, http.StatusCreated, doc)
}

// DownloadClientDocument отдаёт содержимое документа клиента.
func (h *DocumentHandler) DownloadClientDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	doc, content, err := h.Service.OpenClientDocument(ctx, r.PathValue("documentId"))
	if err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to download client document")
		return
	}
	defer content.Close()

	h.sendFile(w, doc.FileName, doc.ContentType, doc.Size, content)
}

// DeleteClientDocument обрабатывает запросы для удаления документа клиента.
func (h *DocumentHandler) DeleteClientDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteClientDocument(ctx, r.PathValue("documentId")); err != nil {
		utils.SendServiceError(w, r, h.Logger, err, "failed to delete client document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// readUpload читает поле file из multipart-формы, ограничивая размер тела.
func (h *DocumentHandler) readUpload(w http.ResponseWriter, r *http.Request) (models.UploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return models.UploadedFile{}, fmt.Errorf("file exceeds the %d MB limit", h.MaxUploadBytes>>20)
		}
		return models.UploadedFile{}, errors.New("invalid multipart form")
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		return models.UploadedFile{}, errors.New("file is required")
	}
	defer part.Close()

	content, err := io.ReadAll(part)
	if err != nil {
		return models.UploadedFile{}, errors.New("failed to read uploaded file")
	}

	return models.UploadedFile{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func (h *DocumentHandler) sendFile(w http.ResponseWriter, fileName, contentType string, size int64, content io.Reader) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": strings.ReplaceAll(fileName, "\"", ""),
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content); err != nil {
		h.Logger.Error("failed to stream document", "file", fileName, "error", err)
	}
}
