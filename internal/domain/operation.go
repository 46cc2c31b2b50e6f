package domain

import "time"

// Operation names the five protocol operations.
type Operation string

const (
	OpAuthenticate        Operation = "authenticate"
	OpListGroups          Operation = "list_groups"
	OpListArticlesInGroup Operation = "list_articles"
	OpGetHeaders          Operation = "get_headers"
	OpGetArticle          Operation = "get_article"
)

// OperationRecord is the persisted summary of one finished operation.
// Passwords and payload bodies are never stored.
type OperationRecord struct {
	ID           string        `json:"id"`
	Operation    Operation     `json:"operation"`
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	Username     string        `json:"username,omitempty"`
	Argument     string        `json:"argument,omitempty"`
	Success      bool          `json:"success"`
	Kind         ErrorKind     `json:"kind,omitempty"`
	Message      string        `json:"message"`
	Greeting     string        `json:"greeting"`
	LastResponse string        `json:"last_response"`
	LineCount    int           `json:"line_count"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}
