package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("object not found")

// Store keeps uploaded statement bytes under opaque keys such as "<userId>/<documentId>.pdf".
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}
