package store

import (
	"database/sql"
	"time"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/domain"
)

// operationDBO maps to the operations table
type operationDBO struct {
	ID           string         `db:"id"`
	Operation    string         `db:"operation"`
	Host         string         `db:"host"`
	Port         int            `db:"port"`
	Username     sql.NullString `db:"username"`
	Argument     sql.NullString `db:"argument"`
	Success      bool           `db:"success"`
	Kind         sql.NullString `db:"kind"`
	Message      string         `db:"message"`
	Greeting     string         `db:"greeting"`
	LastResponse string         `db:"last_response"`
	LineCount    int            `db:"line_count"`
	StartedAt    int64          `db:"started_at"`
	DurationMS   int64          `db:"duration_ms"`
}

// Mapper: DBO to Domain OperationRecord
func (o *operationDBO) ToDomain() *domain.OperationRecord {
	return &domain.OperationRecord{
		ID:           o.ID,
		Operation:    domain.Operation(o.Operation),
		Host:         o.Host,
		Port:         o.Port,
		Username:     o.Username.String,
		Argument:     o.Argument.String,
		Success:      o.Success,
		Kind:         domain.ErrorKind(o.Kind.String),
		Message:      o.Message,
		Greeting:     o.Greeting,
		LastResponse: o.LastResponse,
		LineCount:    o.LineCount,
		StartedAt:    time.UnixMilli(o.StartedAt).UTC(),
		Duration:     time.Duration(o.DurationMS) * time.Millisecond,
	}
}

// Mapper: Domain OperationRecord to DBO
func (o *operationDBO) FromDomain(rec *domain.OperationRecord) {
	o.ID = rec.ID
	o.Operation = string(rec.Operation)
	o.Host = rec.Host
	o.Port = rec.Port
	o.Username = sql.NullString{String: rec.Username, Valid: rec.Username != ""}
	o.Argument = sql.NullString{String: rec.Argument, Valid: rec.Argument != ""}
	o.Success = rec.Success
	o.Kind = sql.NullString{String: string(rec.Kind), Valid: rec.Kind != domain.KindNone}
	o.Message = rec.Message
	o.Greeting = rec.Greeting
	o.LastResponse = rec.LastResponse
	o.LineCount = rec.LineCount
	o.StartedAt = rec.StartedAt.UnixMilli()
	o.DurationMS = rec.Duration.Milliseconds()
}
