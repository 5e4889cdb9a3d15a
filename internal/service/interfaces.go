package service

import (
	"context"

	"finflow/internal/models"

	"github.com/google/uuid"
)

type TransactionStore interface {
	CreateBatch(ctx context.Context, transactions []*models.Transaction) error
	FindByHashes(ctx context.Context, userID uuid.UUID, hashes []string) ([]*models.Transaction, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error)
	UpdateCategory(ctx context.Context, userID, id uuid.UUID, category models.Category) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)
	Stats(ctx context.Context, userID uuid.UUID) (*models.DuplicateStats, error)
}

type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Document, error)
	UpdateStatus(ctx context.Context, update models.DocumentStatusUpdate) error
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Document, error)
}

// ProjectionReader is the read model built from transaction events.
type ProjectionReader interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)
	Search(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, int, error)
}

type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, password string) (string, error)
}
