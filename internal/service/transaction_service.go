package service

import (
	"context"
	"errors"
	"fmt"

	"finflow/internal/events"
	"finflow/internal/models"
	"finflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// resyncBatchSize bounds how many events go into one Publish call during a resync.
const resyncBatchSize = 500

// TransactionService covers the write-side operations on stored transactions.
type TransactionService struct {
	txRepo     TransactionStore
	duplicates *DuplicateService
	publisher  events.Publisher
	logger     *zap.Logger
}

func NewTransactionService(txRepo TransactionStore, duplicates *DuplicateService, publisher events.Publisher, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		txRepo:     txRepo,
		duplicates: duplicates,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *TransactionService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	tx, err := s.txRepo.GetByID(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Recategorize changes the category of one record and re-publishes it so projections follow.
// Category is the only field that may change after ingestion.
func (s *TransactionService) Recategorize(ctx context.Context, userID, id uuid.UUID, category string) (*models.Transaction, error) {
	c, ok := models.ParseCategory(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	tx, err := s.txRepo.UpdateCategory(ctx, userID, id, c)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	if !tx.IsDuplicate {
		if err := s.publisher.Publish(ctx, []events.TransactionCreated{events.FromTransaction(tx)}); err != nil {
			s.logger.Error("Failed to publish recategorized transaction",
				zap.String("transaction_id", tx.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Transaction recategorized",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("category", string(c)),
	)
	return tx, nil
}

// Resync re-publishes every non-duplicate record of a user. Projections upsert by id, so
// replaying is safe and fills in anything a consumer missed.
func (s *TransactionService) Resync(ctx context.Context, userID uuid.UUID) (int, error) {
	txs, err := s.txRepo.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	published := 0
	batch := make([]events.TransactionCreated, 0, resyncBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.publisher.Publish(ctx, batch); err != nil {
			return fmt.Errorf("failed to publish resync batch: %w", err)
		}
		published += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, tx := range txs {
		if tx.IsDuplicate {
			continue
		}
		batch = append(batch, events.FromTransaction(tx))
		if len(batch) == resyncBatchSize {
			if err := flush(); err != nil {
				return published, err
			}
		}
	}
	if err := flush(); err != nil {
		return published, err
	}

	s.logger.Info("Resync published", zap.String("user_id", userID.String()), zap.Int("events", published))
	return published, nil
}

func (s *TransactionService) DuplicateStats(ctx context.Context, userID uuid.UUID) (*models.DuplicateStats, error) {
	return s.duplicates.Stats(ctx, userID)
}
