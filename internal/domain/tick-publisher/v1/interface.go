package tickpublisherv1

import (
	"context"

	tickv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/tick/v1"
)

// TickPublisher delivers enriched ticks to the durable log, keyed by
// instrument code so downstream consumers observe per-instrument updates in
// send order.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=tickpublisherv1_mock
type TickPublisher interface {
	// Connect establishes the log-client connection and awaits a synthetic
	// probe record before the pipeline is considered ready.
	Connect(ctx context.Context) error

	// Publish attempts delivery with bounded per-attempt timeouts and
	// exponential backoff up to the retry ceiling. After exhaustion the
	// failure is returned, never silently dropped.
	Publish(ctx context.Context, enriched *tickv1.EnrichedTick) error

	// Shutdown stops accepting publishes, waits the bounded grace period
	// for in-flight deliveries and releases the connection.
	Shutdown(ctx context.Context) error
}
