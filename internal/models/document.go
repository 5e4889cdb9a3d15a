package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "uploaded"
	DocumentStatusExtracting DocumentStatus = "extracting"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s DocumentStatus) Terminal() bool {
	return s == DocumentStatusCompleted || s == DocumentStatusFailed
}

type Document struct {
	ID               uuid.UUID      `db:"id"`
	UserID           uuid.UUID      `db:"user_id"`
	FileName         string         `db:"file_name"`
	StorageKey       string         `db:"storage_key"`
	Status           DocumentStatus `db:"status"`
	ErrorMessage     *string        `db:"error_message"`
	TransactionCount *int           `db:"transaction_count"`
	DuplicateCount   *int           `db:"duplicate_count"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}
