// Package app assembles the infrastructure shared by the API server and finflowctl.
package app

import (
	"context"
	"errors"
	"fmt"

	"finflow/internal/events"
	"finflow/internal/projection"
	"finflow/internal/repository"
	"finflow/internal/storage"
	"finflow/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	TransportMemory = "memory"
	TransportKafka  = "kafka"

	StorageLocal = "local"
	StorageGCS   = "gcs"

	memoryBusBuffer = 256
)

// Bus is the configured message channel.
type Bus struct {
	Publisher  events.Publisher
	Subscriber events.Subscriber
	closers    []func() error
}

func NewBus(cfg *config.Config, logger *zap.Logger) (*Bus, error) {
	switch cfg.Events.Transport {
	case "", TransportMemory:
		bus := events.NewMemoryBus(cfg.Events.Partitions, memoryBusBuffer, logger)
		logger.Info("Using in-memory event bus", zap.Int("partitions", cfg.Events.Partitions))
		return &Bus{Publisher: bus, Subscriber: bus}, nil
	case TransportKafka:
		pub := events.NewKafkaPublisher(&cfg.Kafka, logger)
		sub := events.NewKafkaSubscriber(&cfg.Kafka, logger)
		logger.Info("Using Kafka event bus",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.TransactionsTopic),
		)
		return &Bus{Publisher: pub, Subscriber: sub, closers: []func() error{pub.Close}}, nil
	default:
		return nil, fmt.Errorf("unknown events transport %q", cfg.Events.Transport)
	}
}

func (b *Bus) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewStore returns the statement byte store and its close func.
func NewStore(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (storage.Store, func() error, error) {
	switch cfg.Provider {
	case "", StorageLocal:
		s, err := storage.NewFileStore(cfg.LocalPath, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	case StorageGCS:
		s, err := storage.NewGCSStore(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// RegisterProjections subscribes the read models to the bus: the Postgres projection always, the
// BigQuery one when enabled. The returned func releases the warehouse client.
func RegisterProjections(ctx context.Context, sub events.Subscriber, pool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) (func() error, error) {
	analytics := projection.New("analytics", repository.NewProjectionRepository(pool, logger), logger)
	if err := sub.Subscribe(analytics.Name(), analytics.Apply); err != nil {
		return nil, err
	}

	if !cfg.BigQuery.Enabled {
		return func() error { return nil }, nil
	}

	bq, err := projection.NewBigQueryStore(ctx, &cfg.BigQuery, logger)
	if err != nil {
		return nil, err
	}
	warehouse := projection.New("warehouse", bq, logger)
	if err := sub.Subscribe(warehouse.Name(), warehouse.Apply); err != nil {
		bq.Close()
		return nil, err
	}
	return bq.Close, nil
}
