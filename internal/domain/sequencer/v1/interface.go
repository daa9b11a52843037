package sequencerv1

import (
	tickv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/tick/v1"
)

// Sequencer attaches arrival metadata and a process-wide strictly increasing
// sequence id to an accepted tick. It performs no I/O and cannot fail.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=sequencerv1_mock
type Sequencer interface {
	Enrich(tick tickv1.PriceTick, raw tickv1.RawRecord, outcome tickv1.ValidationOutcome) tickv1.EnrichedTick
}
