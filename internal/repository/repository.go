package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound возвращается, когда запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate возвращается при нарушении ограничения уникальности.
	ErrDuplicate = errors.New("duplicate record")
)

const (
	uniqueViolationCode   = "23505"
	invalidTextRepresCode = "22P02"
)

// DBTX - общий интерфейс пула соединений и транзакции.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// rowScanner покрывает pgx.Row и pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Repositories - набор репозиториев, работающих поверх одного DBTX.
type Repositories struct {
	Clients      ClientRepository
	Tenders      TenderRepository
	Documents    DocumentRepository
	Requirements RequirementRepository
	Deadlines    DeadlineRepository
}

// NewPostgresRepositories создаёт репозитории поверх пула или транзакции.
func NewPostgresRepositories(db DBTX) Repositories {
	return Repositories{
		Clients:      NewPostgresClientRepository(db),
		Tenders:      NewPostgresTenderRepository(db),
		Documents:    NewPostgresDocumentRepository(db),
		Requirements: NewPostgresRequirementRepository(db),
		Deadlines:    NewPostgresDeadlineRepository(db),
	}
}

// Transactor выполняет функцию в рамках одной транзакции.
// Если fn возвращает ошибку, все изменения откатываются.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// PostgresTransactor - реализация Transactor на pgxpool.
type PostgresTransactor struct {
	DB *pgxpool.Pool
}

// NewPostgresTransactor создаёт новый экземпляр PostgresTransactor.
func NewPostgresTransactor(db *pgxpool.Pool) *PostgresTransactor {
	return &PostgresTransactor{DB: db}
}

// WithinTransaction открывает транзакцию, выполняет fn и фиксирует изменения.
func (t *PostgresTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	tx, err := t.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// после Commit откат возвращает pgx.ErrTxClosed, это ожидаемо
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, NewPostgresRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// translateError приводит ошибки драйвера к ошибкам репозитория.
func translateError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%s: %w: %s", op, ErrDuplicate, pgErr.ConstraintName)
		case invalidTextRepresCode:
			// некорректный uuid в параметре: такой записи быть не может
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// expectAffected возвращает ErrNotFound, если команда не затронула ни одной строки.
func expectAffected(tag pgconn.CommandTag, op string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
