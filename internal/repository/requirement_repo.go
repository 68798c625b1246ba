package repository

import (
	"context"

	"github.com/senyabanana/licitagora/internal/models"
)

// RequirementRepository - интерфейс для работы с требованиями к документации.
type RequirementRepository interface {
	GetRequirements(ctx context.Context, tenderId string) ([]models.Requirement, error)
	GetRequirementById(ctx context.Context, requirementId string) (*models.Requirement, error)
	CreateRequirement(ctx context.Context, req *models.Requirement) error
	UpdateRequirement(ctx context.Context, req *models.Requirement) error
	DeleteRequirement(ctx context.Context, requirementId string) error
	DeleteTenderRequirements(ctx context.Context, tenderId string) (int64, error)
}

// PostgresRequirementRepository - реализация RequirementRepository для базы данных.
type PostgresRequirementRepository struct {
	DB DBTX
}

// NewPostgresRequirementRepository создаёт новый экземпляр PostgresRequirementRepository.
func NewPostgresRequirementRepository(db DBTX) *PostgresRequirementRepository {
	return &PostgresRequirementRepository{DB: db}
}

const requirementColumns = `id, tender_id, description, category, satisfied, document_id, notes, created_at, updated_at`

func scanRequirement(row rowScanner) (*models.Requirement, error) {
	var req models.Requirement
	if err := row.Scan(
		&req.ID,
		&req.TenderID,
		&req.Description,
		&req.Category,
		&req.Satisfied,
		&req.DocumentID,
		&req.Notes,
		&req.CreatedAt,
		&req.UpdatedAt); err != nil {
		return nil, err
	}
	return &req, nil
}

// GetRequirements возвращает требования тендера.
func (r *PostgresRequirementRepository) GetRequirements(ctx context.Context, tenderId string) ([]models.Requirement, error) {
	query := `SELECT ` + requirementColumns + ` FROM requirement WHERE tender_id = $1 ORDER BY created_at, id`
	rows, err := r.DB.Query(ctx, query, tenderId)
	if err != nil {
		return nil, translateError(err, "failed to query requirements")
	}
	defer rows.Close()

	reqs := []models.Requirement{}
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan requirement")
		}
		reqs = append(reqs, *req)
	}
	return reqs, translateError(rows.Err(), "failed to iterate requirements")
}

// GetRequirementById получает требование по ID.
func (r *PostgresRequirementRepository) GetRequirementById(ctx context.Context, requirementId string) (*models.Requirement, error) {
	query := `SELECT ` + requirementColumns + ` FROM requirement WHERE id = $1`
	req, err := scanRequirement(r.DB.QueryRow(ctx, query, requirementId))
	if err != nil {
		return nil, translateError(err, "failed to get requirement")
	}
	return req, nil
}

// CreateRequirement создает требование.
func (r *PostgresRequirementRepository) CreateRequirement(ctx context.Context, req *models.Requirement) error {
	query := `INSERT INTO requirement (id, tender_id, description, category, satisfied, document_id, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.Exec(ctx, query,
		req.ID,
		req.TenderID,
		req.Description,
		req.Category,
		req.Satisfied,
		req.DocumentID,
		req.Notes,
		req.CreatedAt,
		req.UpdatedAt)
	return translateError(err, "failed to insert requirement")
}

// UpdateRequirement перезаписывает изменяемые поля требования.
func (r *PostgresRequirementRepository) UpdateRequirement(ctx context.Context, req *models.Requirement) error {
	query := `UPDATE requirement
	          SET description = $1, category = $2, satisfied = $3, document_id = $4, notes = $5, updated_at = $6
	          WHERE id = $7`
	tag, err := r.DB.Exec(ctx, query,
		req.Description,
		req.Category,
		req.Satisfied,
		req.DocumentID,
		req.Notes,
		req.UpdatedAt,
		req.ID)
	if err != nil {
		return translateError(err, "failed to update requirement")
	}
	return expectAffected(tag, "failed to update requirement")
}

// DeleteRequirement удаляет требование.
func (r *PostgresRequirementRepository) DeleteRequirement(ctx context.Context, requirementId string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM requirement WHERE id = $1`, requirementId)
	if err != nil {
		return translateError(err, "failed to delete requirement")
	}
	return expectAffected(tag, "failed to delete requirement")
}

// DeleteTenderRequirements удаляет все требования тендера и возвращает их число.
func (r *PostgresRequirementRepository) DeleteTenderRequirements(ctx context.Context, tenderId string) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM requirement WHERE tender_id = $1`, tenderId)
	if err != nil {
		return 0, translateError(err, "failed to delete tender requirements")
	}
	return tag.RowsAffected(), nil
}
