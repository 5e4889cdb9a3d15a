package app

import (
	"context"
	"testing"

	"finflow/internal/events"
	"finflow/internal/storage"
	"finflow/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewBus(t *testing.T) {
	cfg := &config.Config{Events: config.EventsConfig{Transport: TransportMemory, Partitions: 2}}
	bus, err := NewBus(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &events.MemoryBus{}, bus.Publisher)
	assert.Same(t, bus.Publisher, bus.Subscriber)
	assert.NoError(t, bus.Close())

	cfg.Events.Transport = TransportKafka
	cfg.Kafka = config.KafkaConfig{Brokers: []string{"localhost:9092"}, TransactionsTopic: "t"}
	bus, err = NewBus(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &events.KafkaPublisher{}, bus.Publisher)
	assert.IsType(t, &events.KafkaSubscriber{}, bus.Subscriber)
	assert.NoError(t, bus.Close())

	cfg.Events.Transport = "carrier-pigeon"
	_, err = NewBus(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	store, closeStore, err := NewStore(ctx, &config.StorageConfig{Provider: StorageLocal, LocalPath: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &storage.FileStore{}, store)
	assert.NoError(t, closeStore())

	_, _, err = NewStore(ctx, &config.StorageConfig{Provider: StorageGCS}, zap.NewNop())
	assert.Error(t, err, "bucket is required")

	_, _, err = NewStore(ctx, &config.StorageConfig{Provider: "s3"}, zap.NewNop())
	assert.Error(t, err)
}
