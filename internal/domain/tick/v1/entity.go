package tickv1

import (
	"time"
)

// RawRecord is one undecoded wire line together with its transport metadata.
// It lives from extraction by the framer until the validation engine decodes
// it.
type RawRecord struct {
	Line         string
	ConnectionID string
	ReceiptTime  time.Time
}

// PriceTick is the decoded domain object for one price update. Optional
// fields are nil when absent on the wire.
type PriceTick struct {
	Instrument       string
	Price            float64
	EventTimestampMS int64
	Volume           *float64
	Bid              *float64
	Ask              *float64
}

// Reason is one named validation failure or warning. Code is the stable
// category used for metrics; Message is human-readable.
type Reason struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationOutcome is the result of running a raw record through the
// validation engine. Reasons is ordered and non-empty iff Passed is false.
// Warnings carries anomaly flags that did not reject the record.
type ValidationOutcome struct {
	Passed   bool     `json:"passed"`
	Reasons  []Reason `json:"reasons,omitempty"`
	Warnings []Reason `json:"warnings,omitempty"`
}

// EnrichedTick is a validated PriceTick plus arrival metadata and a
// process-wide strictly increasing sequence id. Immutable once created.
type EnrichedTick struct {
	Tick          PriceTick
	Sequence      int64
	ConnectionID  string
	ReceiptTime   time.Time
	LatencyMillis int64
	Validation    ValidationOutcome
}
