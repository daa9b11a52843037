// Package ingestor wires the connection manager, validation engine,
// sequencer and publish pipeline into one runnable ingest engine.
package ingestor

import (
	"context"
	"sync"

	tickpublisherv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/tick-publisher/v1"
	tickv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/tick/v1"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/listener"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/metrics"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/usecase/sequencer"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/usecase/validator"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/config"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/logger"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/util"
)

// Ingestor is the ingest engine. It owns the listen socket and processes
// every raw record through validate, enrich, publish. Each connection's
// records flow through Handle in arrival order because the read loop that
// produced them calls it synchronously.
type Ingestor struct {
	config    *config.Config
	logger    logger.Interface
	validator *validator.Validator
	sequencer *sequencer.Sequencer
	publisher tickpublisherv1.TickPublisher
	listener  *listener.Listener

	// Ingest statistics
	mu        sync.RWMutex
	processed int64
	rejected  int64
	published int64
}

// New assembles the engine around a connected publisher.
func New(cfg *config.Config, log logger.Interface, publisher tickpublisherv1.TickPublisher) *Ingestor {
	i := &Ingestor{
		config:    cfg,
		logger:    log,
		validator: validator.New(cfg.Validator, log),
		sequencer: sequencer.New(),
		publisher: publisher,
	}
	i.listener = listener.New(cfg.Listener, log, i)

	return i
}

// Start binds the listen socket and begins accepting producer connections.
// The publisher must already be connected.
func (i *Ingestor) Start(ctx context.Context) error {
	if err := i.listener.Start(ctx); err != nil {
		return err
	}

	i.logger.Info("ingest engine started",
		logger.Field{Key: "topic", Value: i.config.Kafka.Topic},
		logger.Field{Key: "strict", Value: i.config.Validator.Strict},
	)

	return nil
}

// Stop drains in the pipeline's natural order: stop accepting and reading
// first, then give the publisher its grace period to flush.
func (i *Ingestor) Stop(ctx context.Context) error {
	if err := i.listener.Stop(ctx); err != nil {
		i.logger.Warn("listener did not stop cleanly",
			logger.Field{Key: "error", Value: err.Error()},
		)
	}

	if err := i.publisher.Shutdown(ctx); err != nil {
		return err
	}

	i.logger.Info("ingest engine stopped",
		logger.Field{Key: "processed", Value: i.Processed()},
		logger.Field{Key: "rejected", Value: i.Rejected()},
		logger.Field{Key: "published", Value: i.Published()},
	)

	return nil
}

// Handle processes one raw record end to end. A rejection is terminal for
// the record and returns nil; only publish failures surface as errors.
func (i *Ingestor) Handle(ctx context.Context, raw tickv1.RawRecord) error {
	i.addProcessed()

	tick, outcome := i.validator.Validate(ctx, raw)
	if !outcome.Passed {
		i.addRejected()
		for _, reason := range outcome.Reasons {
			metrics.ValidationRejections.WithLabelValues(reason.Code).Inc()
		}
		i.logger.WarnContext(ctx, "record rejected",
			logger.Field{Key: "reason", Value: outcome.Reasons[0].Code},
			logger.Field{Key: "detail", Value: outcome.Reasons[0].Message},
			logger.Field{Key: "remote_addr", Value: util.GetRemoteAddr(ctx)},
			logger.Field{Key: "line", Value: raw.Line},
		)
		return nil
	}

	if len(outcome.Warnings) > 0 {
		metrics.ValidationWarnings.Add(float64(len(outcome.Warnings)))
	}

	enriched := i.sequencer.Enrich(*tick, raw, outcome)

	i.logger.DebugContext(ctx, "tick accepted",
		logger.Field{Key: "instrument", Value: enriched.Tick.Instrument},
		logger.Field{Key: "sequence", Value: enriched.Sequence},
		logger.Field{Key: "latency_ms", Value: enriched.LatencyMillis},
	)

	if err := i.publisher.Publish(ctx, &enriched); err != nil {
		return err
	}

	i.addPublished()
	return nil
}

// Processed returns the number of raw records handled.
func (i *Ingestor) Processed() int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.processed
}

// Rejected returns the number of records dropped by validation.
func (i *Ingestor) Rejected() int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.rejected
}

// Published returns the number of ticks delivered to the log.
func (i *Ingestor) Published() int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.published
}

// Listener exposes the connection manager, used by tests to learn the bound
// address.
func (i *Ingestor) Listener() *listener.Listener {
	return i.listener
}

func (i *Ingestor) addProcessed() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.processed++
}

func (i *Ingestor) addRejected() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.rejected++
}

func (i *Ingestor) addPublished() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.published++
}
