package events

import (
	"context"
	"testing"
	"time"

	"finflow/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchBackoff(t *testing.T) {
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, time.Second},
		{3, 2 * time.Second},
		{7, 30 * time.Second},
		{50, 30 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fetchBackoff(tt.failures), "failures=%d", tt.failures)
	}
}

func TestKafkaSubscriber_StopTwice(t *testing.T) {
	s := NewKafkaSubscriber(&config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}, TransactionsTopic: "transactions"}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}
