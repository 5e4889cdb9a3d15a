package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"finflow/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testUser = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func TestTransactionHash_KnownVector(t *testing.T) {
	got := TransactionHash(day(2024, time.May, 24), decimal.RequireFromString("142.3"), "  Whole   Foods Market ", testUser)
	assert.Equal(t, "79c42cf7a191cf97633d3c63d21fbbb6458efdbde60d1696b052f3973ff64979", got)
}

func TestTransactionHash_Normalization(t *testing.T) {
	base := TransactionHash(day(2024, time.May, 24), decimal.RequireFromString("142.30"), "Whole Foods Market", testUser)

	laterSameDay := time.Date(2024, time.May, 24, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, base, TransactionHash(laterSameDay, decimal.RequireFromString("142.300"), "WHOLE FOODS\tMARKET", testUser))

	assert.NotEqual(t, base, TransactionHash(day(2024, time.May, 25), decimal.RequireFromString("142.30"), "Whole Foods Market", testUser))
	assert.NotEqual(t, base, TransactionHash(day(2024, time.May, 24), decimal.RequireFromString("142.31"), "Whole Foods Market", testUser))
	assert.NotEqual(t, base, TransactionHash(day(2024, time.May, 24), decimal.RequireFromString("142.30"), "Whole Foods Market", uuid.New()))
}

func TestTruncateUTF16(t *testing.T) {
	assert.Equal(t, "café", truncateUTF16("café", 10))
	assert.Equal(t, "ab", truncateUTF16("abc", 2))
	// 😀 is two code units
	assert.Equal(t, "a😀", truncateUTF16("a😀b", 3))
	assert.Equal(t, "a\uFFFD", truncateUTF16("a😀b", 2))
}

func TestTransactionHash_CapsAtUTF16Units(t *testing.T) {
	date := day(2024, time.May, 24)
	amount := decimal.RequireFromString("10")
	prefix := strings.Repeat("a", 199)

	got := TransactionHash(date, amount, prefix+"😀 tail", testUser)
	assert.Equal(t, TransactionHash(date, amount, prefix+"\uFFFD", testUser), got)

	long := strings.Repeat("b", 250)
	assert.Equal(t, TransactionHash(date, amount, long[:200], testUser), TransactionHash(date, amount, long, testUser))
}

func TestCheckDuplicates(t *testing.T) {
	repo := &memTransactions{}
	existingHash := TransactionHash(day(2024, time.May, 24), decimal.RequireFromString("142.30"), "Whole Foods Market", testUser)
	stored := &models.Transaction{
		ID:          uuid.New(),
		UserID:      testUser,
		Date:        day(2024, time.May, 24),
		Amount:      decimal.RequireFromString("142.30"),
		ContentHash: existingHash,
	}
	require.NoError(t, repo.CreateBatch(context.Background(), []*models.Transaction{stored}))

	svc := NewDuplicateService(repo, zap.NewNop())
	candidates := []models.ParsedTransaction{
		{Date: day(2024, time.May, 24), Amount: decimal.RequireFromString("142.30"), Description: "whole foods market"},
		{Date: day(2024, time.May, 25), Amount: decimal.RequireFromString("9.99"), Description: "Coffee"},
		{Date: day(2024, time.May, 25), Amount: decimal.RequireFromString("9.99"), Description: "coffee "},
	}

	results, err := svc.CheckDuplicates(context.Background(), testUser, candidates)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].IsDuplicate)
	assert.False(t, results[0].InBatch)
	assert.Equal(t, stored.ID, results[0].ExistingID)
	assert.Equal(t, existingHash, results[0].Hash)

	assert.False(t, results[1].IsDuplicate)

	assert.True(t, results[2].IsDuplicate)
	assert.True(t, results[2].InBatch)
	assert.Equal(t, results[1].Hash, results[2].Hash)

	single, err := svc.CheckDuplicate(context.Background(), testUser, day(2024, time.May, 24), decimal.RequireFromString("142.3"), "Whole Foods Market")
	require.NoError(t, err)
	assert.True(t, single.IsDuplicate)

	other, err := svc.CheckDuplicate(context.Background(), uuid.New(), day(2024, time.May, 24), decimal.RequireFromString("142.3"), "Whole Foods Market")
	require.NoError(t, err)
	assert.False(t, other.IsDuplicate)
}
