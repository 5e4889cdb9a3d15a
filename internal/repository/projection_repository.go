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

var projectionColumns = []string{
	"id", "user_id", "document_id", "date", "description", "amount", "direction", "category", "raw_merchant",
}

// ProjectionRepository stores the analytics read model built from transaction events.
type ProjectionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectionRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectionRepository {
	return &ProjectionRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes the row keyed by id; replaying the same event leaves the table unchanged.
func (r *ProjectionRepository) Upsert(ctx context.Context, tx *models.Transaction) error {
	query := squirrel.Insert("transaction_projections").
		Columns(append(projectionColumns, "applied_at")...).
		Values(tx.ID, tx.UserID, tx.DocumentID, tx.Date, tx.Description, tx.Amount, tx.Direction,
			tx.Category, tx.RawMerchant, squirrel.Expr("NOW()")).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			description = EXCLUDED.description,
			amount = EXCLUDED.amount,
			direction = EXCLUDED.direction,
			category = EXCLUDED.category,
			raw_merchant = EXCLUDED.raw_merchant,
			applied_at = EXCLUDED.applied_at`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert projection %s: %w", tx.ID, err)
	}
	return nil
}

func (r *ProjectionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	query := squirrel.Select(projectionColumns...).
		From("transaction_projections").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.query(ctx, query)
}

// Search applies the listing filters and returns one page plus the total match count.
func (r *ProjectionRepository) Search(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, int, error) {
	where := squirrel.And{squirrel.Eq{"user_id": filter.UserID}}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"description": pattern},
			squirrel.ILike{"raw_merchant": pattern},
		})
	}
	if filter.Category != "" {
		where = append(where, squirrel.Eq{"category": filter.Category})
	}
	if filter.Direction != "" {
		where = append(where, squirrel.Eq{"direction": filter.Direction})
	}
	if filter.DateFrom != nil {
		where = append(where, squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		where = append(where, squirrel.LtOrEq{"date": *filter.DateTo})
	}

	countSQL, countArgs, err := squirrel.Select("COUNT(*)").
		From("transaction_projections").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := squirrel.Select(projectionColumns...).
		From("transaction_projections").
		Where(where).
		OrderBy("date DESC", "id ASC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		PlaceholderFormat(squirrel.Dollar)

	items, err := r.query(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ProjectionRepository) query(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Transaction, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Transaction
	for rows.Next() {
		item, err := scanProjection(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanProjection(row pgx.Row) (*models.Transaction, error) {
	var tx models.Transaction
	if err := row.Scan(
		&tx.ID, &tx.UserID, &tx.DocumentID, &tx.Date, &tx.Description, &tx.Amount, &tx.Direction,
		&tx.Category, &tx.RawMerchant,
	); err != nil {
		return nil, err
	}
	return &tx, nil
}
