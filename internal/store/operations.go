package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/domain"
)

const operationColumns = `id, operation, host, port, username, argument, success, kind,
	message, greeting, last_response, line_count, started_at, duration_ms`

// SaveOperation inserts or replaces one record.
func (s *SQLiteStore) SaveOperation(ctx context.Context, rec *domain.OperationRecord) error {
	var dbo operationDBO
	dbo.FromDomain(rec)

	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO operations (`+operationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		dbo.ID, dbo.Operation, dbo.Host, dbo.Port, dbo.Username, dbo.Argument, dbo.Success, dbo.Kind,
		dbo.Message, dbo.Greeting, dbo.LastResponse, dbo.LineCount, dbo.StartedAt, dbo.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to save operation %s: %w", rec.ID, err)
	}
	return nil
}

// ListOperations returns the newest records first.
func (s *SQLiteStore) ListOperations(ctx context.Context, limit int) ([]*domain.OperationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+operationColumns+` FROM operations
		ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
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

func (s *SQLiteStore) GetOperation(ctx context.Context, id string) (*domain.OperationRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+operationColumns+` FROM operations WHERE id = ?`, id)

	var dbo operationDBO
	if err := scanOperation(row, &dbo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return dbo.ToDomain(), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOperation(r scanner, dbo *operationDBO) error {
	return r.Scan(&dbo.ID, &dbo.Operation, &dbo.Host, &dbo.Port, &dbo.Username, &dbo.Argument,
		&dbo.Success, &dbo.Kind, &dbo.Message, &dbo.Greeting, &dbo.LastResponse, &dbo.LineCount,
		&dbo.StartedAt, &dbo.DurationMS)
}
