package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CLASSIFIER_PROVIDER", "")
	t.Setenv("INGEST_DUPLICATE_POLICY", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "none", cfg.Classifier.Provider)
	assert.Equal(t, "skip", cfg.Ingestion.DuplicatePolicy)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "transactions.created", cfg.Kafka.TransactionsTopic)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("CLASSIFIER_PROVIDER", "GigaChat")
	t.Setenv("CLASSIFIER_TIMEOUT_SECONDS", "3")
	t.Setenv("BIGQUERY_PROJECTION_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "gigachat", cfg.Classifier.Provider)
	assert.Equal(t, 3*time.Second, cfg.Ingestion.ClassifierTimeout)
	assert.True(t, cfg.BigQuery.Enabled)
}
