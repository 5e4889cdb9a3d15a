package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileStore_PutGet(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "user-1/doc-1.pdf", []byte("%PDF-1.4")))

	data, err := store.Get(ctx, "user-1/doc-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	require.NoError(t, store.Put(ctx, "user-1/doc-1.pdf", []byte("v2")))
	data, err = store.Get(ctx, "user-1/doc-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestFileStore_Errors(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Get(ctx, "missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, store.Put(ctx, "../escape.pdf", []byte("x")))
	assert.Error(t, store.Put(ctx, "", []byte("x")))
}
