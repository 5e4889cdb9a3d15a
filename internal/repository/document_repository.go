package repository

import (
	"context"
	"fmt"

	"finflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var documentColumns = []string{
	"id", "user_id", "file_name", "storage_key", "status", "error_message",
	"transaction_count", "duplicate_count", "created_at", "updated_at",
}

type DocumentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDocumentRepository(db *pgxpool.Pool, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := squirrel.Insert("documents").
		Columns(documentColumns...).
		Values(doc.ID, doc.UserID, doc.FileName, doc.StorageKey, doc.Status, doc.ErrorMessage,
			doc.TransactionCount, doc.DuplicateCount, doc.CreatedAt, doc.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Document, error) {
	query := squirrel.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	doc, err := scanDocument(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return doc, nil
}

// UpdateStatus refuses to move a document out of a terminal state.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, update models.DocumentStatusUpdate) error {
	query := squirrel.Update("documents").
		Set("status", update.Status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": update.ID}).
		Where(squirrel.NotEq{"status": []models.DocumentStatus{models.DocumentStatusCompleted, models.DocumentStatusFailed}}).
		PlaceholderFormat(squirrel.Dollar)

	if update.ErrorMessage != nil {
		query = query.Set("error_message", *update.ErrorMessage)
	}
	if update.TransactionCount != nil {
		query = query.Set("transaction_count", *update.TransactionCount)
	}
	if update.DuplicateCount != nil {
		query = query.Set("duplicate_count", *update.DuplicateCount)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s not updatable to %s: %w", update.ID, update.Status, ErrNotFound)
	}
	return nil
}

func (r *DocumentRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Document, error) {
	query := squirrel.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}
	return documents, rows.Err()
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	if err := row.Scan(
		&doc.ID, &doc.UserID, &doc.FileName, &doc.StorageKey, &doc.Status, &doc.ErrorMessage,
		&doc.TransactionCount, &doc.DuplicateCount, &doc.CreatedAt, &doc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &doc, nil
}
