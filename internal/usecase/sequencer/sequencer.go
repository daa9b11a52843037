// Package sequencer stamps accepted ticks with arrival metadata and a
// process-wide strictly increasing sequence id.
package sequencer

import (
	"sync/atomic"
	"time"

	sequencerv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/sequencer/v1"
	tickv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/tick/v1"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/util"
)

// Sequencer issues sequence ids from an atomic counter seeded with the
// process start time in nanoseconds, which keeps ids unique across restarts
// without cross-process coordination.
type Sequencer struct {
	seq atomic.Int64
}

var _ sequencerv1.Sequencer = (*Sequencer)(nil)

// New creates a sequencer seeded at process start.
func New() *Sequencer {
	s := &Sequencer{}
	s.seq.Store(time.Now().UnixNano())
	return s
}

// Enrich produces the immutable EnrichedTick for an accepted PriceTick.
// Latency is reported as-is, even when clock skew makes it negative.
func (s *Sequencer) Enrich(tick tickv1.PriceTick, raw tickv1.RawRecord, outcome tickv1.ValidationOutcome) tickv1.EnrichedTick {
	return tickv1.EnrichedTick{
		Tick:          tick,
		Sequence:      s.seq.Add(1),
		ConnectionID:  raw.ConnectionID,
		ReceiptTime:   raw.ReceiptTime,
		LatencyMillis: util.LatencyMillis(raw.ReceiptTime, tick.EventTimestampMS),
		Validation:    outcome,
	}
}
