package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var transactionColumns = []string{
	"id", "user_id", "document_id", "date", "description", "amount", "direction",
	"category", "raw_merchant", "content_hash", "is_duplicate", "created_at", "updated_at",
}

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// Postgres caps a statement at 65535 bind parameters.
const (
	maxBindParams   = 65535
	insertChunkRows = 1000
)

// CreateBatch inserts the rows in chunks inside one database transaction, so a document is
// committed entirely or not at all.
func (r *TransactionRepository) CreateBatch(ctx context.Context, transactions []*models.Transaction) (err error) {
	if len(transactions) == 0 {
		return nil
	}

	dbTx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := dbTx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error("Failed to roll back transaction insert", zap.Error(rbErr))
			}
		}
	}()

	for _, chunk := range chunkTransactions(transactions, insertChunkRows) {
		sql, args, err := insertTransactionsQuery(chunk)
		if err != nil {
			return err
		}
		if _, err := dbTx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert %d transactions: %w", len(transactions), mapError(err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %d transactions: %w", len(transactions), mapError(err))
	}
	return nil
}

func chunkTransactions(transactions []*models.Transaction, size int) [][]*models.Transaction {
	if size <= 0 {
		size = insertChunkRows
	}
	chunks := make([][]*models.Transaction, 0, (len(transactions)+size-1)/size)
	for size < len(transactions) {
		transactions, chunks = transactions[size:], append(chunks, transactions[:size:size])
	}
	if len(transactions) > 0 {
		chunks = append(chunks, transactions)
	}
	return chunks
}

func insertTransactionsQuery(transactions []*models.Transaction) (string, []interface{}, error) {
	builder := squirrel.Insert("transactions").
		Columns(transactionColumns...).
		PlaceholderFormat(squirrel.Dollar)

	for _, tx := range transactions {
		builder = builder.Values(
			tx.ID, tx.UserID, tx.DocumentID, tx.Date, tx.Description, tx.Amount, tx.Direction,
			tx.Category, tx.RawMerchant, tx.ContentHash, tx.IsDuplicate, tx.CreatedAt, tx.UpdatedAt,
		)
	}
	return builder.ToSql()
}

// FindByHashes returns the stored records carrying any of hashes, canonical rows first.
func (r *TransactionRepository) FindByHashes(ctx context.Context, userID uuid.UUID, hashes []string) ([]*models.Transaction, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID, "content_hash": hashes}).
		OrderBy("is_duplicate ASC", "created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.query(ctx, query)
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	tx, err := scanTransaction(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return tx, nil
}

// UpdateCategory changes the only mutable field and returns the updated row.
func (r *TransactionRepository) UpdateCategory(ctx context.Context, userID, id uuid.UUID, category models.Category) (*models.Transaction, error) {
	query := squirrel.Update("transactions").
		Set("category", category).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING " + strings.Join(transactionColumns, ", ")).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	tx, err := scanTransaction(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return tx, nil
}

// ListByUser returns the user's canonical (non-duplicate) records in date order.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID, "is_duplicate": false}).
		OrderBy("date ASC", "created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.query(ctx, query)
}

func (r *TransactionRepository) Stats(ctx context.Context, userID uuid.UUID) (*models.DuplicateStats, error) {
	query := squirrel.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE NOT is_duplicate)",
		"COUNT(*) FILTER (WHERE is_duplicate)",
	).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var stats models.DuplicateStats
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&stats.Total, &stats.Unique, &stats.Duplicates); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *TransactionRepository) query(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Transaction, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var tx models.Transaction
	if err := row.Scan(
		&tx.ID, &tx.UserID, &tx.DocumentID, &tx.Date, &tx.Description, &tx.Amount, &tx.Direction,
		&tx.Category, &tx.RawMerchant, &tx.ContentHash, &tx.IsDuplicate, &tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &tx, nil
}
