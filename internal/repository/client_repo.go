package repository

import (
	"context"
	"time"

	"github.com/senyabanana/licitagora/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ClientRepository - интерфейс для работы с клиентами.
type ClientRepository interface {
	GetClients(ctx context.Context, limit, offset int) ([]models.Client, error)
	GetClientById(ctx context.Context, clientId string) (*models.Client, error)
	CreateClient(ctx context.Context, clientReq models.ClientRequest) (*models.Client, error)
	UpdateClient(ctx context.Context, clientId string, clientReq models.ClientRequest) (*models.Client, error)
	DeleteClient(ctx context.Context, clientId string) error
}

// PostgresClientRepository - реализация ClientRepository для базы данных.
type PostgresClientRepository struct {
	DB DBTX
}

// NewPostgresClientRepository создаёт новый экземпляр PostgresClientRepository.
func NewPostgresClientRepository(db DBTX) *PostgresClientRepository {
	return &PostgresClientRepository{DB: db}
}

const clientColumns = `id, legal_name, trade_name, tax_id, email, phone, address, activity_sectors, created_at, updated_at`

func scanClient(row rowScanner) (*models.Client, error) {
	var c models.Client
	if err := row.Scan(
		&c.ID,
		&c.LegalName,
		&c.TradeName,
		&c.TaxID,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.ActivitySectors,
		&c.CreatedAt,
		&c.UpdatedAt); err != nil {
		return nil, err
	}
	if c.ActivitySectors == nil {
		c.ActivitySectors = []string{}
	}
	return &c, nil
}

// GetClients возвращает список клиентов.
func (r *PostgresClientRepository) GetClients(ctx context.Context, limit, offset int) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM client ORDER BY legal_name LIMIT $1 OFFSET $2`
	rows, err := r.DB.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, translateError(err, "failed to query clients")
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan client")
		}
		clients = append(clients, *c)
	}
	return clients, translateError(rows.Err(), "failed to iterate clients")
}

// GetClientById получает клиента по ID.
func (r *PostgresClientRepository) GetClientById(ctx context.Context, clientId string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM client WHERE id = $1`
	c, err := scanClient(r.DB.QueryRow(ctx, query, clientId))
	if err != nil {
		return nil, translateError(err, "failed to get client")
	}
	return c, nil
}

// CreateClient создает нового клиента.
func (r *PostgresClientRepository) CreateClient(ctx context.Context, clientReq models.ClientRequest) (*models.Client, error) {
	now := time.Now().UTC()
	query := `INSERT INTO client (id, legal_name, trade_name, tax_id, email, phone, address, activity_sectors, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	          RETURNING ` + clientColumns
	c, err := scanClient(r.DB.QueryRow(ctx, query,
		uuid.New().String(),
		clientReq.LegalName,
		clientReq.TradeName,
		clientReq.TaxID,
		clientReq.Email,
		clientReq.Phone,
		clientReq.Address,
		pq.Array(clientReq.ActivitySectors),
		now))
	if err != nil {
		return nil, translateError(err, "failed to insert client")
	}
	return c, nil
}

// UpdateClient перезаписывает поля клиента.
func (r *PostgresClientRepository) UpdateClient(ctx context.Context, clientId string, clientReq models.ClientRequest) (*models.Client, error) {
	query := `UPDATE client
	          SET legal_name = $1, trade_name = $2, tax_id = $3, email = $4, phone = $5, address = $6,
	              activity_sectors = $7, updated_at = $8
	          WHERE id = $9
	          RETURNING ` + clientColumns
	c, err := scanClient(r.DB.QueryRow(ctx, query,
		clientReq.LegalName,
		clientReq.TradeName,
		clientReq.TaxID,
		clientReq.Email,
		clientReq.Phone,
		clientReq.Address,
		pq.Array(clientReq.ActivitySectors),
		time.Now().UTC(),
		clientId))
	if err != nil {
		return nil, translateError(err, "failed to update client")
	}
	return c, nil
}

// DeleteClient удаляет клиента; ссылки тендеров на него обнуляются базой.
func (r *PostgresClientRepository) DeleteClient(ctx context.Context, clientId string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM client WHERE id = $1`, clientId)
	if err != nil {
		return translateError(err, "failed to delete client")
	}
	return expectAffected(tag, "failed to delete client")
}
