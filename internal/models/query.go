package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionFilter narrows a user's transaction listing. Zero values mean "no filter".
type TransactionFilter struct {
	UserID    uuid.UUID
	Search    string
	Category  Category
	Direction Direction
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

type DuplicateStats struct {
	Total      int
	Unique     int
	Duplicates int
}

// DocumentStatusUpdate moves a document to Status; the optional fields are written when set.
type DocumentStatusUpdate struct {
	ID               uuid.UUID
	Status           DocumentStatus
	ErrorMessage     *string
	TransactionCount *int
	DuplicateCount   *int
}
