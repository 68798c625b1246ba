package repository

import (
	"context"

	"github.com/senyabanana/licitagora/internal/models"
)

// DocumentRepository - интерфейс для работы с документами тендеров и клиентов.
type DocumentRepository interface {
	GetTenderDocuments(ctx context.Context, tenderId string) ([]models.TenderDocument, error)
	GetTenderDocumentById(ctx context.Context, documentId string) (*models.TenderDocument, error)
	GetNoticeDocument(ctx context.Context, tenderId string) (*models.TenderDocument, error)
	CreateTenderDocument(ctx context.Context, doc *models.TenderDocument) error
	DeleteTenderDocument(ctx context.Context, documentId string) error

	GetDocumentTypes(ctx context.Context) ([]models.DocumentType, error)
	GetDocumentTypeById(ctx context.Context, typeId int) (*models.DocumentType, error)
	GetClientDocuments(ctx context.Context, clientId string) ([]models.ClientDocument, error)
	GetClientDocumentById(ctx context.Context, documentId string) (*models.ClientDocument, error)
	CreateClientDocument(ctx context.Context, doc *models.ClientDocument) error
	DeleteClientDocument(ctx context.Context, documentId string) error
}

// PostgresDocumentRepository - реализация DocumentRepository для базы данных.
type PostgresDocumentRepository struct {
	DB DBTX
}

// NewPostgresDocumentRepository создаёт новый экземпляр PostgresDocumentRepository.
func NewPostgresDocumentRepository(db DBTX) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{DB: db}
}

const tenderDocumentColumns = `id, tender_id, type, file_name, content_type, size, storage_path, description, uploaded_at`

func scanTenderDocument(row rowScanner) (*models.TenderDocument, error) {
	var d models.TenderDocument
	if err := row.Scan(
		&d.ID,
		&d.TenderID,
		&d.Type,
		&d.FileName,
		&d.ContentType,
		&d.Size,
		&d.StoragePath,
		&d.Description,
		&d.UploadedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetTenderDocuments возвращает документы тендера.
func (r *PostgresDocumentRepository) GetTenderDocuments(ctx context.Context, tenderId string) ([]models.TenderDocument, error) {
	query := `SELECT ` + tenderDocumentColumns + ` FROM tender_document WHERE tender_id = $1 ORDER BY uploaded_at`
	rows, err := r.DB.Query(ctx, query, tenderId)
	if err != nil {
		return nil, translateError(err, "failed to query tender documents")
	}
	defer rows.Close()

	docs := []models.TenderDocument{}
	for rows.Next() {
		d, err := scanTenderDocument(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan tender document")
		}
		docs = append(docs, *d)
	}
	return docs, translateError(rows.Err(), "failed to iterate tender documents")
}

// GetTenderDocumentById получает документ тендера по ID.
func (r *PostgresDocumentRepository) GetTenderDocumentById(ctx context.Context, documentId string) (*models.TenderDocument, error) {
	query := `SELECT ` + tenderDocumentColumns + ` FROM tender_document WHERE id = $1`
	d, err := scanTenderDocument(r.DB.QueryRow(ctx, query, documentId))
	if err != nil {
		return nil, translateError(err, "failed to get tender document")
	}
	return d, nil
}

// GetNoticeDocument возвращает извещение тендера или ErrNotFound.
func (r *PostgresDocumentRepository) GetNoticeDocument(ctx context.Context, tenderId string) (*models.TenderDocument, error) {
	query := `SELECT ` + tenderDocumentColumns + ` FROM tender_document WHERE tender_id = $1 AND type = $2`
	d, err := scanTenderDocument(r.DB.QueryRow(ctx, query, tenderId, models.NoticeDocument))
	if err != nil {
		return nil, translateError(err, "failed to get notice document")
	}
	return d, nil
}

// CreateTenderDocument сохраняет строку документа тендера.
func (r *PostgresDocumentRepository) CreateTenderDocument(ctx context.Context, doc *models.TenderDocument) error {
	query := `INSERT INTO tender_document (id, tender_id, type, file_name, content_type, size, storage_path, description, uploaded_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.Exec(ctx, query,
		doc.ID,
		doc.TenderID,
		doc.Type,
		doc.FileName,
		doc.ContentType,
		doc.Size,
		doc.StoragePath,
		doc.Description,
		doc.UploadedAt)
	return translateError(err, "failed to insert tender document")
}

// DeleteTenderDocument удаляет строку документа тендера.
func (r *PostgresDocumentRepository) DeleteTenderDocument(ctx context.Context, documentId string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM tender_document WHERE id = $1`, documentId)
	if err != nil {
		return translateError(err, "failed to delete tender document")
	}
	return expectAffected(tag, "failed to delete tender document")
}

// GetDocumentTypes возвращает справочник типов документов клиента.
func (r *PostgresDocumentRepository) GetDocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name FROM document_type ORDER BY name`)
	if err != nil {
		return nil, translateError(err, "failed to query document types")
	}
	defer rows.Close()

	types := []models.DocumentType{}
	for rows.Next() {
		var t models.DocumentType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, translateError(err, "failed to scan document type")
		}
		types = append(types, t)
	}
	return types, translateError(rows.Err(), "failed to iterate document types")
}

// GetDocumentTypeById получает тип документа по ID.
func (r *PostgresDocumentRepository) GetDocumentTypeById(ctx context.Context, typeId int) (*models.DocumentType, error) {
	var t models.DocumentType
	err := r.DB.QueryRow(ctx, `SELECT id, name FROM document_type WHERE id = $1`, typeId).Scan(&t.ID, &t.Name)
	if err != nil {
		return nil, translateError(err, "failed to get document type")
	}
	return &t, nil
}

const clientDocumentSelect = `SELECT cd.id, cd.client_id, cd.document_type_id, dt.name, cd.file_name, cd.content_type, cd.size,
	cd.storage_path, cd.expires_at, cd.uploaded_at
	FROM client_document cd JOIN document_type dt ON dt.id = cd.document_type_id`

func scanClientDocument(row rowScanner) (*models.ClientDocument, error) {
	var d models.ClientDocument
	if err := row.Scan(
		&d.ID,
		&d.ClientID,
		&d.DocumentTypeID,
		&d.DocumentTypeName,
		&d.FileName,
		&d.ContentType,
		&d.Size,
		&d.StoragePath,
		&d.ExpiresAt,
		&d.UploadedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetClientDocuments возвращает документы клиента.
func (r *PostgresDocumentRepository) GetClientDocuments(ctx context.Context, clientId string) ([]models.ClientDocument, error) {
	rows, err := r.DB.Query(ctx, clientDocumentSelect+` WHERE cd.client_id = $1 ORDER BY cd.expires_at NULLS LAST, cd.uploaded_at`, clientId)
	if err != nil {
		return nil, translateError(err, "failed to query client documents")
	}
	defer rows.Close()

	docs := []models.ClientDocument{}
	for rows.Next() {
		d, err := scanClientDocument(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan client document")
		}
		docs = append(docs, *d)
	}
	return docs, translateError(rows.Err(), "failed to iterate client documents")
}

// GetClientDocumentById получает документ клиента по ID.
func (r *PostgresDocumentRepository) GetClientDocumentById(ctx context.Context, documentId string) (*models.ClientDocument, error) {
	d, err := scanClientDocument(r.DB.QueryRow(ctx, clientDocumentSelect+` WHERE cd.id = $1`, documentId))
	if err != nil {
		return nil, translateError(err, "failed to get client document")
	}
	return d, nil
}

// CreateClientDocument сохраняет строку документа клиента.
func (r *PostgresDocumentRepository) CreateClientDocument(ctx context.Context, doc *models.ClientDocument) error {
	query := `INSERT INTO client_document (id, client_id, document_type_id, file_name, content_type, size, storage_path, expires_at, uploaded_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.Exec(ctx, query,
		doc.ID,
		doc.ClientID,
		doc.DocumentTypeID,
		doc.FileName,
		doc.ContentType,
		doc.Size,
		doc.StoragePath,
		doc.ExpiresAt,
		doc.UploadedAt)
	return translateError(err, "failed to insert client document")
}

// DeleteClientDocument удаляет строку документа клиента.
func (r *PostgresDocumentRepository) DeleteClientDocument(ctx context.Context, documentId string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM client_document WHERE id = $1`, documentId)
	if err != nil {
		return translateError(err, "failed to delete client document")
	}
	return expectAffected(tag, "failed to delete client document")
}
