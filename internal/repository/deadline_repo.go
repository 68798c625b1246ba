package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/licitagora/internal/models"
)

// DeadlineRepository - интерфейс для работы с дедлайнами.
type DeadlineRepository interface {
	GetDeadlines(ctx context.Context, from, to *time.Time) ([]models.Deadline, error)
	GetDeadlineById(ctx context.Context, deadlineId string) (*models.Deadline, error)
	CreateDeadline(ctx context.Context, deadline *models.Deadline) error
	UpdateDeadline(ctx context.Context, deadline *models.Deadline) error
	DeleteDeadline(ctx context.Context, deadlineId string) error
	HasTenderDeadline(ctx context.Context, tenderId, notes string) (bool, error)
}

// PostgresDeadlineRepository - реализация DeadlineRepository для базы данных.
type PostgresDeadlineRepository struct {
	DB DBTX
}

// NewPostgresDeadlineRepository создаёт новый экземпляр PostgresDeadlineRepository.
func NewPostgresDeadlineRepository(db DBTX) *PostgresDeadlineRepository {
	return &PostgresDeadlineRepository{DB: db}
}

const deadlineColumns = `id, title, date, notes, tender_id, created_at`

func scanDeadline(row rowScanner) (*models.Deadline, error) {
	var d models.Deadline
	if err := row.Scan(&d.ID, &d.Title, &d.Date, &d.Notes, &d.TenderID, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDeadlines возвращает дедлайны, опционально в окне дат [from, to].
func (r *PostgresDeadlineRepository) GetDeadlines(ctx context.Context, from, to *time.Time) ([]models.Deadline, error) {
	query := `SELECT ` + deadlineColumns + ` FROM deadline`
	var filters []string
	var args []interface{}
	argIndex := 1

	if from != nil {
		filters = append(filters, fmt.Sprintf("date >= $%d", argIndex))
		args = append(args, *from)
		argIndex++
	}
	if to != nil {
		filters = append(filters, fmt.Sprintf("date <= $%d", argIndex))
		args = append(args, *to)
	}
	if len(filters) > 0 {
		query += " WHERE " + strings.Join(filters, " AND ")
	}
	query += " ORDER BY date, title"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "failed to query deadlines")
	}
	defer rows.Close()

	deadlines := []models.Deadline{}
	for rows.Next() {
		d, err := scanDeadline(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan deadline")
		}
		deadlines = append(deadlines, *d)
	}
	return deadlines, translateError(rows.Err(), "failed to iterate deadlines")
}

// GetDeadlineById получает дедлайн по ID.
func (r *PostgresDeadlineRepository) GetDeadlineById(ctx context.Context, deadlineId string) (*models.Deadline, error) {
	d, err := scanDeadline(r.DB.QueryRow(ctx, `SELECT `+deadlineColumns+` FROM deadline WHERE id = $1`, deadlineId))
	if err != nil {
		return nil, translateError(err, "failed to get deadline")
	}
	return d, nil
}

// CreateDeadline создает дедлайн.
func (r *PostgresDeadlineRepository) CreateDeadline(ctx context.Context, deadline *models.Deadline) error {
	query := `INSERT INTO deadline (id, title, date, notes, tender_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.Exec(ctx, query,
		deadline.ID,
		deadline.Title,
		deadline.Date,
		deadline.Notes,
		deadline.TenderID,
		deadline.CreatedAt)
	return translateError(err, "failed to insert deadline")
}

// UpdateDeadline перезаписывает поля дедлайна.
func (r *PostgresDeadlineRepository) UpdateDeadline(ctx context.Context, deadline *models.Deadline) error {
	query := `UPDATE deadline SET title = $1, date = $2, notes = $3, tender_id = $4 WHERE id = $5`
	tag, err := r.DB.Exec(ctx, query, deadline.Title, deadline.Date, deadline.Notes, deadline.TenderID, deadline.ID)
	if err != nil {
		return translateError(err, "failed to update deadline")
	}
	return expectAffected(tag, "failed to update deadline")
}

// DeleteDeadline удаляет дедлайн.
func (r *PostgresDeadlineRepository) DeleteDeadline(ctx context.Context, deadlineId string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM deadline WHERE id = $1`, deadlineId)
	if err != nil {
		return translateError(err, "failed to delete deadline")
	}
	return expectAffected(tag, "failed to delete deadline")
}

// HasTenderDeadline проверяет, есть ли у тендера дедлайн с заданными заметками.
func (r *PostgresDeadlineRepository) HasTenderDeadline(ctx context.Context, tenderId, notes string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM deadline WHERE tender_id = $1 AND notes = $2)`
	err := r.DB.QueryRow(ctx, query, tenderId, notes).Scan(&exists)
	if err != nil {
		return false, translateError(err, "failed to check tender deadline")
	}
	return exists, nil
}
