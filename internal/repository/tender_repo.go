package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/licitagora/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TenderRepository - интерфейс для работы с тендерами.
type TenderRepository interface {
	GetTenders(ctx context.Context, filter models.TenderFilter) ([]models.Tender, error)
	GetTenderById(ctx context.Context, tenderId string) (*models.Tender, error)
	CreateTender(ctx context.Context, fields models.TenderFields) (*models.Tender, error)
	EditTender(ctx context.Context, tenderId string, fields models.TenderFields) (*models.Tender, error)
	UpdateTenderStatus(ctx context.Context, tenderId string, status models.TenderStatus) (*models.Tender, error)
	CloseTender(ctx context.Context, tenderId string, closing models.TenderClosing) (*models.Tender, error)
	DeleteTender(ctx context.Context, tenderId string) error
	AddStatusChange(ctx context.Context, change models.TenderStatusChange) error
	GetStatusHistory(ctx context.Context, tenderId string) ([]models.TenderStatusChange, error)
	GetTendersClosingInProgress(ctx context.Context) ([]models.Tender, error)
	GetSummary(ctx context.Context) (*models.Summary, error)
}

// PostgresTenderRepository - реализация TenderRepository для базы данных.
type PostgresTenderRepository struct {
	DB DBTX
}

// NewPostgresTenderRepository создаёт новый экземпляр PostgresTenderRepository.
func NewPostgresTenderRepository(db DBTX) *PostgresTenderRepository {
	return &PostgresTenderRepository{DB: db}
}

const tenderColumns = `id, number, client_id, issuing_body, object, modality, activity_sector, opening_date, closing_date,
	estimated_value, estimated_profit, status, final_value, final_profit, won, loss_reason, closed_at, created_at, updated_at`

func scanTender(row rowScanner) (*models.Tender, error) {
	var t models.Tender
	if err := row.Scan(
		&t.ID,
		&t.Number,
		&t.ClientID,
		&t.IssuingBody,
		&t.Object,
		&t.Modality,
		&t.ActivitySector,
		&t.OpeningDate,
		&t.ClosingDate,
		&t.EstimatedValue,
		&t.EstimatedProfit,
		&t.Status,
		&t.FinalValue,
		&t.FinalProfit,
		&t.Won,
		&t.LossReason,
		&t.ClosedAt,
		&t.CreatedAt,
		&t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresTenderRepository) queryTenders(ctx context.Context, query string, args ...any) ([]models.Tender, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "failed to query tenders")
	}
	defer rows.Close()

	tenders := []models.Tender{}
	for rows.Next() {
		t, err := scanTender(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan tender")
		}
		tenders = append(tenders, *t)
	}
	return tenders, translateError(rows.Err(), "failed to iterate tenders")
}

// GetTenders возвращает список тендеров.
func (r *PostgresTenderRepository) GetTenders(ctx context.Context, filter models.TenderFilter) ([]models.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tender`
	var filters []string
	var args []interface{}
	argIndex := 1

	if len(filter.Statuses) > 0 {
		filters = append(filters, fmt.Sprintf("status = ANY($%d)", argIndex))
		args = append(args, pq.Array(filter.Statuses))
		argIndex++
	}

	if filter.ClientID != "" {
		filters = append(filters, fmt.Sprintf("client_id = $%d", argIndex))
		args = append(args, filter.ClientID)
		argIndex++
	}

	if len(filters) > 0 {
		query += " WHERE " + strings.Join(filters, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY opening_date DESC, number LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	return r.queryTenders(ctx, query, args...)
}

// GetTenderById получает тендер по ID.
func (r *PostgresTenderRepository) GetTenderById(ctx context.Context, tenderId string) (*models.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tender WHERE id = $1`
	t, err := scanTender(r.DB.QueryRow(ctx, query, tenderId))
	if err != nil {
		return nil, translateError(err, "failed to get tender")
	}
	return t, nil
}

// CreateTender создает новый тендер в статусе EM_ANALISE.
func (r *PostgresTenderRepository) CreateTender(ctx context.Context, fields models.TenderFields) (*models.Tender, error) {
	now := time.Now().UTC()
	query := `INSERT INTO tender (id, number, client_id, issuing_body, object, modality, activity_sector, opening_date, closing_date,
	              estimated_value, estimated_profit, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
	          RETURNING ` + tenderColumns
	t, err := scanTender(r.DB.QueryRow(ctx, query,
		uuid.New().String(),
		fields.Number,
		fields.ClientID,
		fields.IssuingBody,
		fields.Object,
		fields.Modality,
		fields.ActivitySector,
		fields.OpeningDate,
		fields.ClosingDate,
		fields.EstimatedValue,
		fields.EstimatedProfit,
		models.InAnalysisTender,
		now))
	if err != nil {
		return nil, translateError(err, "failed to insert tender")
	}
	return t, nil
}

// EditTender перезаписывает редактируемые поля тендера.
func (r *PostgresTenderRepository) EditTender(ctx context.Context, tenderId string, fields models.TenderFields) (*models.Tender, error) {
	query := `UPDATE tender
	          SET number = $1, client_id = $2, issuing_body = $3, object = $4, modality = $5, activity_sector = $6,
	              opening_date = $7, closing_date = $8, estimated_value = $9, estimated_profit = $10, updated_at = $11
	          WHERE id = $12
	          RETURNING ` + tenderColumns
	t, err := scanTender(r.DB.QueryRow(ctx, query,
		fields.Number,
		fields.ClientID,
		fields.IssuingBody,
		fields.Object,
		fields.Modality,
		fields.ActivitySector,
		fields.OpeningDate,
		fields.ClosingDate,
		fields.EstimatedValue,
		fields.EstimatedProfit,
		time.Now().UTC(),
		tenderId))
	if err != nil {
		return nil, translateError(err, "failed to update tender")
	}
	return t, nil
}

// UpdateTenderStatus меняет статус тендера.
func (r *PostgresTenderRepository) UpdateTenderStatus(ctx context.Context, tenderId string, status models.TenderStatus) (*models.Tender, error) {
	query := `UPDATE tender SET status = $1, updated_at = $2 WHERE id = $3 RETURNING ` + tenderColumns
	t, err := scanTender(r.DB.QueryRow(ctx, query, status, time.Now().UTC(), tenderId))
	if err != nil {
		return nil, translateError(err, "failed to update tender status")
	}
	return t, nil
}

// CloseTender фиксирует итог тендера и переводит его в FINALIZADA.
func (r *PostgresTenderRepository) CloseTender(ctx context.Context, tenderId string, closing models.TenderClosing) (*models.Tender, error) {
	query := `UPDATE tender
	          SET status = $1, final_value = $2, final_profit = $3, won = $4, loss_reason = $5, closed_at = $6, updated_at = $6
	          WHERE id = $7
	          RETURNING ` + tenderColumns
	t, err := scanTender(r.DB.QueryRow(ctx, query,
		models.FinalizedTender,
		closing.FinalValue,
		closing.FinalProfit,
		closing.Won,
		closing.LossReason,
		closing.ClosedAt,
		tenderId))
	if err != nil {
		return nil, translateError(err, "failed to close tender")
	}
	return t, nil
}

// DeleteTender удаляет тендер; документы и требования удаляются каскадом.
func (r *PostgresTenderRepository) DeleteTender(ctx context.Context, tenderId string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM tender WHERE id = $1`, tenderId)
	if err != nil {
		return translateError(err, "failed to delete tender")
	}
	return expectAffected(tag, "failed to delete tender")
}

// AddStatusChange записывает смену статуса в историю.
func (r *PostgresTenderRepository) AddStatusChange(ctx context.Context, change models.TenderStatusChange) error {
	query := `INSERT INTO tender_status_history (id, tender_id, from_status, to_status, changed_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.Exec(ctx, query, change.ID, change.TenderID, change.FromStatus, change.ToStatus, change.ChangedAt)
	return translateError(err, "failed to insert tender status change")
}

// GetStatusHistory возвращает историю смены статусов тендера.
func (r *PostgresTenderRepository) GetStatusHistory(ctx context.Context, tenderId string) ([]models.TenderStatusChange, error) {
	query := `SELECT id, tender_id, from_status, to_status, changed_at
	          FROM tender_status_history WHERE tender_id = $1 ORDER BY changed_at`
	rows, err := r.DB.Query(ctx, query, tenderId)
	if err != nil {
		return nil, translateError(err, "failed to query tender history")
	}
	defer rows.Close()

	history := []models.TenderStatusChange{}
	for rows.Next() {
		var c models.TenderStatusChange
		if err := rows.Scan(&c.ID, &c.TenderID, &c.FromStatus, &c.ToStatus, &c.ChangedAt); err != nil {
			return nil, translateError(err, "failed to scan tender history")
		}
		history = append(history, c)
	}
	return history, translateError(rows.Err(), "failed to iterate tender history")
}

// GetTendersClosingInProgress возвращает тендеры в работе с заданной датой закрытия.
func (r *PostgresTenderRepository) GetTendersClosingInProgress(ctx context.Context) ([]models.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tender
	          WHERE status = $1 AND closing_date IS NOT NULL
	          ORDER BY closing_date`
	return r.queryTenders(ctx, query, models.InProgressTender)
}

// GetSummary собирает сводку по тендерам, дедлайнам и документам клиентов.
func (r *PostgresTenderRepository) GetSummary(ctx context.Context) (*models.Summary, error) {
	summary := &models.Summary{ByStatus: map[models.TenderStatus]int{}}
	for _, status := range models.TenderStatuses {
		summary.ByStatus[status] = 0
	}

	rows, err := r.DB.Query(ctx, `SELECT status, COUNT(*) FROM tender GROUP BY status`)
	if err != nil {
		return nil, translateError(err, "failed to count tenders")
	}
	defer rows.Close()
	for rows.Next() {
		var status models.TenderStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, translateError(err, "failed to scan tender count")
		}
		summary.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to iterate tender counts")
	}

	query := `SELECT
	              COUNT(*) FILTER (WHERE status = $1 AND won),
	              COUNT(*) FILTER (WHERE status = $1 AND NOT won),
	              COALESCE(SUM(estimated_value) FILTER (WHERE status IN ($2, $3)), 0)::float8,
	              COALESCE(SUM(final_value) FILTER (WHERE status = $1 AND won), 0)::float8,
	              COALESCE(SUM(final_profit) FILTER (WHERE status = $1 AND won), 0)::float8
	          FROM tender`
	err = r.DB.QueryRow(ctx, query, models.FinalizedTender, models.InAnalysisTender, models.InProgressTender).Scan(
		&summary.Won,
		&summary.Lost,
		&summary.OpenEstimatedValue,
		&summary.WonFinalValue,
		&summary.WonFinalProfit,
	)
	if err != nil {
		return nil, translateError(err, "failed to aggregate tenders")
	}

	query = `SELECT
	             (SELECT COUNT(*) FROM deadline WHERE date BETWEEN CURRENT_DATE AND CURRENT_DATE + 30),
	             (SELECT COUNT(*) FROM client_document WHERE expires_at IS NOT NULL AND expires_at <= CURRENT_DATE + 30)`
	if err := r.DB.QueryRow(ctx, query).Scan(&summary.UpcomingDeadlines, &summary.ExpiringClientDocs); err != nil {
		return nil, translateError(err, "failed to count deadlines")
	}
	return summary, nil
}
