package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateHash is returned when a batch hits the (user_id, content_hash) unique index,
	// i.e. a concurrent ingestion committed the same transaction first.
	ErrDuplicateHash = errors.New("duplicate transaction hash")
)

const uniqueViolation = "23505"

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Join(ErrDuplicateHash, err)
	}
	return err
}
