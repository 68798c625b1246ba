package router

import (
	"net/http"

	"github.com/senyabanana/licitagora/internal/handlers"
	"github.com/senyabanana/licitagora/internal/metrics"
)

// Handlers - набор обработчиков, из которых собираются маршруты.
type Handlers struct {
	Tenders      *handlers.TenderHandler
	Clients      *handlers.ClientHandler
	Documents    *handlers.DocumentHandler
	Requirements *handlers.RequirementHandler
	Deadlines    *handlers.DeadlineHandler
}

func InitRoutes(h Handlers, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", handlers.PingHandler)
	mux.Handle("GET /metrics", m.Handler())

	mux.HandleFunc("GET /api/clients", h.Clients.GetClients)
	mux.HandleFunc("POST /api/clients", h.Clients.CreateClient)
	mux.HandleFunc("GET /api/clients/{clientId}", h.Clients.GetClient)
	mux.HandleFunc("PUT /api/clients/{clientId}", h.Clients.UpdateClient)
	mux.HandleFunc("DELETE /api/clients/{clientId}", h.Clients.DeleteClient)
	mux.HandleFunc("GET /api/clients/{clientId}/documents", h.Documents.GetClientDocuments)
	mux.HandleFunc("POST /api/clients/{clientId}/documents", h.Documents.UploadClientDocument)
	mux.HandleFunc("GET /api/client-documents/{documentId}/file", h.Documents.DownloadClientDocument)
	mux.HandleFunc("DELETE /api/client-documents/{documentId}", h.Documents.DeleteClientDocument)
	mux.HandleFunc("GET /api/document-types", h.Documents.GetDocumentTypes)

	mux.HandleFunc("GET /api/tenders", h.Tenders.GetTenders)
	mux.HandleFunc("POST /api/tenders", h.Tenders.CreateTender)
	mux.HandleFunc("GET /api/tenders/{tenderId}", h.Tenders.GetTender)
	mux.HandleFunc("PUT /api/tenders/{tenderId}", h.Tenders.EditTender)
	mux.HandleFunc("DELETE /api/tenders/{tenderId}", h.Tenders.DeleteTender)
	mux.HandleFunc("PUT /api/tenders/{tenderId}/status", h.Tenders.UpdateTenderStatus)
	mux.HandleFunc("POST /api/tenders/{tenderId}/close", h.Tenders.CloseTender)
	mux.HandleFunc("GET /api/tenders/{tenderId}/history", h.Tenders.GetTenderHistory)

	mux.HandleFunc("GET /api/tenders/{tenderId}/documents", h.Documents.GetTenderDocuments)
	mux.HandleFunc("POST /api/tenders/{tenderId}/documents", h.Documents.UploadTenderDocument)
	mux.HandleFunc("GET /api/tender-documents/{documentId}/file", h.Documents.DownloadTenderDocument)
	mux.HandleFunc("DELETE /api/tender-documents/{documentId}", h.Documents.DeleteTenderDocument)

	mux.HandleFunc("GET /api/tenders/{tenderId}/requirements", h.Requirements.GetRequirements)
	mux.HandleFunc("POST /api/tenders/{tenderId}/requirements", h.Requirements.CreateRequirement)
	mux.HandleFunc("PUT /api/requirements/{requirementId}", h.Requirements.UpdateRequirement)
	mux.HandleFunc("DELETE /api/requirements/{requirementId}", h.Requirements.DeleteRequirement)

	mux.HandleFunc("GET /api/deadlines", h.Deadlines.GetDeadlines)
	mux.HandleFunc("POST /api/deadlines", h.Deadlines.CreateDeadline)
	mux.HandleFunc("POST /api/deadlines/import", h.Deadlines.ImportDeadlines)
	mux.HandleFunc("GET /api/deadlines/{deadlineId}", h.Deadlines.GetDeadline)
	mux.HandleFunc("PUT /api/deadlines/{deadlineId}", h.Deadlines.UpdateDeadline)
	mux.HandleFunc("DELETE /api/deadlines/{deadlineId}", h.Deadlines.DeleteDeadline)

	mux.HandleFunc("GET /api/reports/summary", h.Deadlines.GetSummary)

	return m.Middleware(mux)
}
