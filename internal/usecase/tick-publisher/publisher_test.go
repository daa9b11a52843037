package tickpublisher

import (
	"context"
	"sync"
	"testing"
	"time"

	tickv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/tick/v1"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/config"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/errors"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter fails the first failures calls to WriteMessages, then succeeds.
type fakeWriter struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    int
	messages []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.calls++
	if w.calls <= w.failures {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func testKafkaConfig() config.KafkaConfig {
	return config.KafkaConfig{
		Brokers:         []string{"localhost:9092"},
		Topic:           "price-ticks",
		RequiredAcks:    1,
		MaxRetries:      2,
		RetryBackoff:    time.Millisecond,
		MaxRetryBackoff: 5 * time.Millisecond,
		PublishTimeout:  time.Second,
		ConnectTimeout:  time.Second,
		ShutdownGrace:   time.Second,
	}
}

func newTestPublisher(t *testing.T, writer kafkaWriter) *Publisher {
	t.Helper()

	log, err := logger.NewLogger()
	require.NoError(t, err)

	return newWithWriter(testKafkaConfig(), log, writer)
}

func sampleTick() *tickv1.EnrichedTick {
	return &tickv1.EnrichedTick{
		Tick: tickv1.PriceTick{
			Instrument:       "AAPL.O",
			Price:            150.60,
			EventTimestampMS: 1705323000000,
		},
		Sequence:      42,
		ConnectionID:  "conn-1",
		ReceiptTime:   time.Now(),
		LatencyMillis: 12,
		Validation:    tickv1.ValidationOutcome{Passed: true},
	}
}

func TestPublisher_Connect(t *testing.T) {
	t.Run("sends awaited probe record", func(t *testing.T) {
		writer := &fakeWriter{}
		p := newTestPublisher(t, writer)

		require.NoError(t, p.Connect(context.Background()))
		require.Len(t, writer.messages, 1)
		assert.Equal(t, probeKey, string(writer.messages[0].Key))
	})

	t.Run("surfaces broker failure as transport error", func(t *testing.T) {
		writer := &fakeWriter{failures: 100, err: context.DeadlineExceeded}
		p := newTestPublisher(t, writer)

		err := p.Connect(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindTransport))
	})
}

func TestPublisher_Publish(t *testing.T) {
	t.Run("delivers keyed by instrument", func(t *testing.T) {
		writer := &fakeWriter{}
		p := newTestPublisher(t, writer)

		require.NoError(t, p.Publish(context.Background(), sampleTick()))
		require.Len(t, writer.messages, 1)
		assert.Equal(t, "AAPL.O", string(writer.messages[0].Key))

		payload, err := tickv1.FromBytes(writer.messages[0].Value)
		require.NoError(t, err)
		assert.Equal(t, 150.60, payload.Price)
		assert.Equal(t, int64(42), payload.Sequence)
		assert.True(t, payload.Validation.Passed)
	})

	t.Run("retries transient failures with backoff", func(t *testing.T) {
		writer := &fakeWriter{failures: 2, err: context.DeadlineExceeded}
		p := newTestPublisher(t, writer)

		require.NoError(t, p.Publish(context.Background(), sampleTick()))
		assert.Equal(t, 3, writer.calls)
		assert.Len(t, writer.messages, 1)
	})

	t.Run("surfaces failure after retry exhaustion", func(t *testing.T) {
		writer := &fakeWriter{failures: 100, err: context.DeadlineExceeded}
		p := newTestPublisher(t, writer)

		err := p.Publish(context.Background(), sampleTick())
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindPublish))
		// MaxRetries=2 means three attempts in total
		assert.Equal(t, 3, writer.calls)
	})

	t.Run("preserves order across sequential publishes", func(t *testing.T) {
		writer := &fakeWriter{}
		p := newTestPublisher(t, writer)

		for i := int64(1); i <= 5; i++ {
			enriched := sampleTick()
			enriched.Sequence = i
			require.NoError(t, p.Publish(context.Background(), enriched))
		}

		require.Len(t, writer.messages, 5)
		for i, msg := range writer.messages {
			payload, err := tickv1.FromBytes(msg.Value)
			require.NoError(t, err)
			assert.Equal(t, int64(i+1), payload.Sequence)
		}
	})
}

func TestPublisher_Shutdown(t *testing.T) {
	t.Run("rejects publishes after shutdown", func(t *testing.T) {
		writer := &fakeWriter{}
		p := newTestPublisher(t, writer)

		require.NoError(t, p.Shutdown(context.Background()))
		assert.True(t, writer.closed)

		err := p.Publish(context.Background(), sampleTick())
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindPublish))
	})

	t.Run("is idempotent", func(t *testing.T) {
		writer := &fakeWriter{}
		p := newTestPublisher(t, writer)

		require.NoError(t, p.Shutdown(context.Background()))
		require.NoError(t, p.Shutdown(context.Background()))
	})
}
