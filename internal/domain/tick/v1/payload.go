package tickv1

import (
	"encoding/json"
	"time"
)

// TickPayload is the message value written to the durable log, one per tick,
// keyed by instrument code. This is the sole contract downstream consumers
// rely on.
type TickPayload struct {
	Instrument       string            `json:"instrument"`
	Price            float64           `json:"price"`
	EventTimestampMS int64             `json:"eventTimestampMs"`
	Volume           *float64          `json:"volume,omitempty"`
	Bid              *float64          `json:"bid,omitempty"`
	Ask              *float64          `json:"ask,omitempty"`
	Sequence         int64             `json:"sequence"`
	ConnectionID     string            `json:"connectionId"`
	ReceiptTime      time.Time         `json:"receiptTime"`
	LatencyMillis    int64             `json:"latencyMs"`
	Validation       ValidationOutcome `json:"validation"`
}

// CreateFromEnriched builds the log payload for an enriched tick.
func CreateFromEnriched(enriched *EnrichedTick) *TickPayload {
	return &TickPayload{
		Instrument:       enriched.Tick.Instrument,
		Price:            enriched.Tick.Price,
		EventTimestampMS: enriched.Tick.EventTimestampMS,
		Volume:           enriched.Tick.Volume,
		Bid:              enriched.Tick.Bid,
		Ask:              enriched.Tick.Ask,
		Sequence:         enriched.Sequence,
		ConnectionID:     enriched.ConnectionID,
		ReceiptTime:      enriched.ReceiptTime,
		LatencyMillis:    enriched.LatencyMillis,
		Validation:       enriched.Validation,
	}
}

// ToBytes converts the payload to a byte array.
func ToBytes(payload *TickPayload) ([]byte, error) {
	return json.Marshal(payload)
}

// FromBytes converts a byte array to a payload.
func FromBytes(data []byte) (*TickPayload, error) {
	var payload TickPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
