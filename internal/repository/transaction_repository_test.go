package repository

import (
	"testing"

	"finflow/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(n int) []*models.Transaction {
	out := make([]*models.Transaction, n)
	for i := range out {
		out[i] = &models.Transaction{ID: uuid.New(), Amount: decimal.NewFromInt(int64(i + 1))}
	}
	return out
}

func TestChunkTransactions(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		sizes []int
	}{
		{name: "empty", n: 0, sizes: []int{}},
		{name: "under one chunk", n: 3, sizes: []int{3}},
		{name: "exact chunk", n: insertChunkRows, sizes: []int{insertChunkRows}},
		{name: "large statement", n: 5042, sizes: []int{1000, 1000, 1000, 1000, 1000, 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := rows(tt.n)
			chunks := chunkTransactions(input, insertChunkRows)

			sizes := make([]int, len(chunks))
			var flat []*models.Transaction
			for i, c := range chunks {
				sizes[i] = len(c)
				flat = append(flat, c...)
			}
			assert.Equal(t, tt.sizes, sizes)
			if tt.n > 0 {
				assert.Equal(t, input, flat)
			}
		})
	}
}

func TestInsertTransactionsQuery_StaysUnderBindLimit(t *testing.T) {
	for _, chunk := range chunkTransactions(rows(5042), insertChunkRows) {
		sql, args, err := insertTransactionsQuery(chunk)
		require.NoError(t, err)
		assert.Contains(t, sql, "INSERT INTO transactions")
		assert.Len(t, args, len(chunk)*len(transactionColumns))
		assert.LessOrEqual(t, len(args), maxBindParams)
	}
}
