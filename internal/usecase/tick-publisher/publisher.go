// Package tickpublisher delivers enriched ticks to Kafka, keyed by
// instrument code. Transient delivery failures are retried with exponential
// backoff up to a configured ceiling; serialization failures surface
// immediately.
package tickpublisher

import (
	"context"
	"fmt"
	"sync"
	"time"

	tickpublisherv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/tick-publisher/v1"
	tickv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/tick/v1"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/metrics"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/config"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/errors"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// probeKey marks the synthetic connectivity record sent by Connect.
// Downstream consumers ignore it.
const probeKey = "__tradepulse_probe__"

// kafkaWriter is the slice of kafka.Writer the publisher depends on.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher is the publish pipeline over a single shared Kafka writer.
// Concurrent publish calls are serialized through sendMu, which also keeps
// per-instrument delivery in publish-call order.
type Publisher struct {
	config config.KafkaConfig
	logger logger.Interface
	writer kafkaWriter

	sendMu sync.Mutex

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

var _ tickpublisherv1.TickPublisher = (*Publisher)(nil)

// NewPublisher creates the publish pipeline. The writer performs a single
// attempt per call; retry policy lives here, not in the transport.
func NewPublisher(cfg config.KafkaConfig, log logger.Interface) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		MaxAttempts:  1,
		WriteTimeout: cfg.PublishTimeout,
	}

	return &Publisher{
		config: cfg,
		logger: log,
		writer: writer,
	}
}

// newWithWriter is used by tests to inject a writer double.
func newWithWriter(cfg config.KafkaConfig, log logger.Interface, writer kafkaWriter) *Publisher {
	return &Publisher{
		config: cfg,
		logger: log,
		writer: writer,
	}
}

// Connect sends and awaits a synthetic probe record so a broker that is down
// at startup fails fast instead of on the first real tick.
func (p *Publisher) Connect(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, p.config.ConnectTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(probeKey),
		Value: []byte(fmt.Sprintf(`{"probe":true,"sentAt":%d}`, time.Now().UnixMilli())),
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(probeCtx, msg); err != nil {
		return errors.TracerFromError(errors.KindTransport, err)
	}

	p.logger.Info("publish pipeline ready",
		logger.Field{Key: "brokers", Value: p.config.Brokers},
		logger.Field{Key: "topic", Value: p.config.Topic},
	)
	return nil
}

// Publish delivers one enriched tick, keyed by instrument code.
func (p *Publisher) Publish(ctx context.Context, enriched *tickv1.EnrichedTick) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.NewTracer(errors.KindPublish, "publisher is shut down")
	}
	p.inflight.Add(1)
	p.mu.Unlock()
	defer p.inflight.Done()

	value, err := tickv1.ToBytes(tickv1.CreateFromEnriched(enriched))
	if err != nil {
		// permanent failure, retrying cannot help
		return errors.TracerFromError(errors.KindPublish, err)
	}

	msg := kafka.Message{
		Key:   []byte(enriched.Tick.Instrument),
		Value: value,
		Time:  enriched.ReceiptTime,
	}

	if err := p.deliver(ctx, msg); err != nil {
		metrics.PublishFailures.Inc()
		p.logger.ErrorContext(ctx, errors.TracerFromError(errors.KindPublish, err),
			logger.Field{Key: "instrument", Value: enriched.Tick.Instrument},
			logger.Field{Key: "sequence", Value: enriched.Sequence},
		)
		return errors.NewTracer(errors.KindPublish,
			fmt.Sprintf("delivery failed after %d attempts", p.config.MaxRetries+1)).Wrap(err)
	}

	metrics.TicksPublished.Inc()
	return nil
}

// deliver runs the attempt loop under sendMu so concurrent callers cannot
// interleave retries of records sharing a partition key.
func (p *Publisher) deliver(ctx context.Context, msg kafka.Message) error {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	backoff := p.config.RetryBackoff
	var lastErr error

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.PublishRetries.Inc()
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
			if backoff > p.config.MaxRetryBackoff {
				backoff = p.config.MaxRetryBackoff
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
		lastErr = p.writer.WriteMessages(attemptCtx, msg)
		cancel()

		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			// caller is gone, stop retrying
			return lastErr
		}

		p.logger.WarnContext(ctx, "publish attempt failed",
			logger.Field{Key: "attempt", Value: attempt + 1},
			logger.Field{Key: "error", Value: lastErr.Error()},
		)
	}

	return lastErr
}

// Shutdown stops intake, waits up to the configured grace period for
// in-flight deliveries, then releases the writer. Records unflushed after
// the grace period are reported lost, not retried.
func (p *Publisher) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	graceCtx, cancel := context.WithTimeout(ctx, p.config.ShutdownGrace)
	defer cancel()

	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()

	var graceErr error
	select {
	case <-done:
	case <-graceCtx.Done():
		graceErr = errors.NewTracer(errors.KindPublish,
			"shutdown grace period elapsed with deliveries in flight; records lost")
		p.logger.Error(graceErr)
	}

	if err := p.writer.Close(); err != nil {
		p.logger.Error(errors.TracerFromError(errors.KindTransport, err))
	}

	return graceErr
}
