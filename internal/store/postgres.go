package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{`
CREATE TABLE IF NOT EXISTS operations (
    id            TEXT PRIMARY KEY,
    operation     TEXT NOT NULL,
    host          TEXT NOT NULL,
    port          INTEGER NOT NULL,
    username      TEXT,
    argument      TEXT,
    success       BOOLEAN NOT NULL DEFAULT FALSE,
    kind          TEXT,
    message       TEXT NOT NULL DEFAULT '',
    greeting      TEXT NOT NULL DEFAULT '',
    last_response TEXT NOT NULL DEFAULT '',
    line_count    INTEGER NOT NULL DEFAULT 0,
    started_at    BIGINT NOT NULL,
    duration_ms   BIGINT NOT NULL DEFAULT 0
)`,
	`CREATE INDEX IF NOT EXISTS idx_operations_started_at ON operations (started_at DESC)`,
}

// PostgresStore keeps the operation history in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("could not create schema: %w", err)
		}
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) SaveOperation(ctx context.Context, rec *domain.OperationRecord) error {
	var dbo operationDBO
	dbo.FromDomain(rec)

	_, err := s.pool.Exec(ctx, `INSERT INTO operations (`+operationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			success = EXCLUDED.success,
			kind = EXCLUDED.kind,
			message = EXCLUDED.message,
			greeting = EXCLUDED.greeting,
			last_response = EXCLUDED.last_response,
			line_count = EXCLUDED.line_count,
			duration_ms = EXCLUDED.duration_ms`,
		dbo.ID, dbo.Operation, dbo.Host, dbo.Port, dbo.Username, dbo.Argument, dbo.Success, dbo.Kind,
		dbo.Message, dbo.Greeting, dbo.LastResponse, dbo.LineCount, dbo.StartedAt, dbo.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to save operation %s: %w", rec.ID, err)
	}
	return nil
}

func (s *PostgresStore) ListOperations(ctx context.Context, limit int) ([]*domain.OperationRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+operationColumns+` FROM operations
		ORDER BY started_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.OperationRecord, 0)
	for rows.Next() {
		var dbo operationDBO
		if err := scanOperation(rows, &dbo); err != nil {
			return nil, err
		}
		out = append(out, dbo.ToDomain())
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetOperation(ctx context.Context, id string) (*domain.OperationRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+operationColumns+` FROM operations WHERE id = $1`, id)

	var dbo operationDBO
	if err := scanOperation(row, &dbo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return dbo.ToDomain(), nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
