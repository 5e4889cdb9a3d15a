package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"finflow/pkg/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	handlerAttempts = 3
	handlerBackoff  = 500 * time.Millisecond

	fetchBackoffBase = 500 * time.Millisecond
	fetchBackoffMax  = 30 * time.Second
)

// KafkaPublisher writes one message per event, keyed by user id.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaPublisher(cfg *config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.TransactionsTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Transport:    &kafka.Transport{ClientID: cfg.ClientID},
		},
		logger: logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, events []TransactionCreated) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := Encode(e)
		if err != nil {
			return fmt.Errorf("failed to encode event %s: %w", e.ID, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(e.UserID), Value: value})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write %d messages: %w", len(msgs), err)
	}
	p.logger.Debug("Events published", zap.String("topic", p.writer.Topic), zap.Int("count", len(msgs)))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type groupReader struct {
	group   string
	reader  *kafka.Reader
	handler Handler
}

// KafkaSubscriber runs one consumer-group reader per subscription.
type KafkaSubscriber struct {
	cfg     *config.KafkaConfig
	readers []*groupReader
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	stopped chan struct{}
	once    sync.Once
	logger  *zap.Logger
}

func NewKafkaSubscriber(cfg *config.KafkaConfig, logger *zap.Logger) *KafkaSubscriber {
	return &KafkaSubscriber{cfg: cfg, stopped: make(chan struct{}), logger: logger}
}

func (s *KafkaSubscriber) Subscribe(group string, handler Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("cannot subscribe %q after start", group)
	}
	s.readers = append(s.readers, &groupReader{
		group: group,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: s.cfg.Brokers,
			GroupID: group,
			Topic:   s.cfg.TransactionsTopic,
			Dialer:  &kafka.Dialer{ClientID: s.cfg.ClientID, Timeout: 10 * time.Second},
		}),
		handler: handler,
	})
	return nil
}

func (s *KafkaSubscriber) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.started = true
	for _, r := range s.readers {
		s.wg.Add(1)
		go func(r *groupReader) {
			defer s.wg.Done()
			s.run(ctx, r)
		}(r)
	}
	return nil
}

func (s *KafkaSubscriber) run(ctx context.Context, r *groupReader) {
	log := s.logger.With(zap.String("group", r.group), zap.String("topic", s.cfg.TransactionsTopic))
	log.Info("Kafka consumer started")

	failures := 0
	for {
		msg, err := r.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				log.Info("Kafka consumer stopped")
				return
			}
			failures++
			delay := fetchBackoff(failures)
			log.Error("Failed to fetch message", zap.Int("failures", failures), zap.Duration("retry_in", delay), zap.Error(err))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				log.Info("Kafka consumer stopped")
				return
			case <-s.stopped:
				log.Info("Kafka consumer stopped")
				return
			}
			continue
		}
		failures = 0

		event, err := Decode(msg.Value)
		if err != nil {
			log.Error("Dropping malformed message",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		} else if err := s.apply(ctx, r.handler, event); err != nil {
			log.Error("Giving up on event, resync will reconcile",
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
		}

		if err := r.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Error("Failed to commit offset", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (s *KafkaSubscriber) apply(ctx context.Context, handler Handler, event TransactionCreated) error {
	var err error
	for attempt := 1; attempt <= handlerAttempts; attempt++ {
		if err = handler(ctx, event); err == nil {
			return nil
		}
		select {
		case <-time.After(time.Duration(attempt) * handlerBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// fetchBackoff doubles from fetchBackoffBase per consecutive failure, capped at fetchBackoffMax.
func fetchBackoff(failures int) time.Duration {
	delay := fetchBackoffBase
	for i := 1; i < failures && delay < fetchBackoffMax; i++ {
		delay *= 2
	}
	if delay > fetchBackoffMax {
		delay = fetchBackoffMax
	}
	return delay
}

// Stop closes the readers, which unblocks FetchMessage, and waits for the loops to exit.
func (s *KafkaSubscriber) Stop(ctx context.Context) error {
	s.once.Do(func() { close(s.stopped) })

	s.mu.Lock()
	var errs []error
	for _, r := range s.readers {
		if err := r.reader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close reader %s: %w", r.group, err))
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return errors.Join(errs...)
}

var (
	_ Publisher  = (*KafkaPublisher)(nil)
	_ Subscriber = (*KafkaSubscriber)(nil)
)
