package service

import (
	"context"
	"testing"

	"finflow/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTransactionService(t *testing.T) (*TransactionService, *memTransactions, *recordingPublisher) {
	t.Helper()
	repo := &memTransactions{}
	pub := &recordingPublisher{}
	log := zap.NewNop()
	return NewTransactionService(repo, NewDuplicateService(repo, log), pub, log), repo, pub
}

func TestRecategorize(t *testing.T) {
	svc, repo, pub := newTransactionService(t)
	stored := tx(day(2024, 5, 24), "142.30", models.DirectionDebit, models.CategoryOthers)
	stored.ContentHash = "h1"
	require.NoError(t, repo.CreateBatch(context.Background(), []*models.Transaction{stored}))

	updated, err := svc.Recategorize(context.Background(), testUser, stored.ID, "food")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryFood, updated.Category)
	assert.True(t, stored.Amount.Equal(updated.Amount))

	published := pub.published()
	require.Len(t, published, 1)
	assert.Equal(t, "Food", published[0].Category)
	assert.Equal(t, stored.ID.String(), published[0].ID)

	_, err = svc.Recategorize(context.Background(), testUser, stored.ID, "Groceries")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = svc.Recategorize(context.Background(), uuid.New(), stored.ID, "Bills")
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	_, err = svc.Get(context.Background(), testUser, uuid.New())
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestResync(t *testing.T) {
	svc, repo, pub := newTransactionService(t)

	var rows []*models.Transaction
	for i := 0; i < resyncBatchSize+20; i++ {
		r := tx(day(2024, 1, 1).AddDate(0, 0, i), "10", models.DirectionDebit, models.CategoryFood)
		r.ContentHash = uuid.NewString()
		rows = append(rows, r)
	}
	dup := tx(day(2024, 1, 1), "10", models.DirectionDebit, models.CategoryFood)
	dup.ContentHash = rows[0].ContentHash
	dup.IsDuplicate = true
	rows = append(rows, dup)
	require.NoError(t, repo.CreateBatch(context.Background(), rows))

	n, err := svc.Resync(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, resyncBatchSize+20, n)
	assert.Len(t, pub.published(), resyncBatchSize+20)

	stats, err := svc.DuplicateStats(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Duplicates)

	pub.err = assert.AnError
	_, err = svc.Resync(context.Background(), testUser)
	assert.Error(t, err)
}
