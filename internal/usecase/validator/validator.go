// Package validator implements the stateful per-instrument validation
// engine. Checks run in a fixed order: structural (wire codec), range,
// cross-field, then the price-deviation anomaly check against the last
// accepted price.
package validator

import (
	"context"
	"fmt"
	"sync"
	"time"

	tickv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/tick/v1"
	validatorv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/validator/v1"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/config"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/logger"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/wire"
)

// Reason codes, stable across releases; metrics and log filters key on them.
const (
	ReasonDecode         = "decode"
	ReasonPriceRange     = "price_range"
	ReasonTimestampRange = "timestamp_range"
	ReasonFieldRange     = "field_range"
	ReasonCrossedMarket  = "crossed_market"
	ReasonOutsideSpread  = "outside_spread"
	ReasonPriceDeviation = "price_deviation"
)

// Validator applies structural and business-rule checks to raw records and
// keeps the last accepted price per instrument. The last-price map is never
// evicted; acceptable while the instrument universe stays in the tens to low
// hundreds, a growth risk beyond that.
type Validator struct {
	config config.ValidatorConfig
	logger logger.Interface

	// mu serializes read-check-then-write on lastPrice. Cardinality is
	// small, so one coarse lock covers all instruments.
	mu        sync.Mutex
	lastPrice map[string]float64

	now func() time.Time
}

var _ validatorv1.Validator = (*Validator)(nil)

// New creates a validation engine with empty per-instrument state.
func New(cfg config.ValidatorConfig, log logger.Interface) *Validator {
	return &Validator{
		config:    cfg,
		logger:    log,
		lastPrice: make(map[string]float64),
		now:       time.Now,
	}
}

// Validate runs the full check sequence on one raw record. It never returns
// an error: malformed input is an ordinary rejection outcome.
func (v *Validator) Validate(ctx context.Context, raw tickv1.RawRecord) (*tickv1.PriceTick, tickv1.ValidationOutcome) {
	record, err := wire.Decode(raw.Line)
	if err != nil {
		return nil, reject(tickv1.Reason{Code: ReasonDecode, Message: err.Error()})
	}

	if reasons := v.checkRanges(record); len(reasons) > 0 {
		return nil, tickv1.ValidationOutcome{Passed: false, Reasons: reasons}
	}

	if reasons := checkCrossFields(record); len(reasons) > 0 {
		return nil, tickv1.ValidationOutcome{Passed: false, Reasons: reasons}
	}

	// Anomaly check and the state update it guards must be atomic per
	// instrument; everything above has already passed, so acceptance is
	// decided inside the lock.
	v.mu.Lock()
	defer v.mu.Unlock()

	outcome := tickv1.ValidationOutcome{Passed: true}
	if last, ok := v.lastPrice[record.Instrument]; ok {
		deviation := relativeDeviation(record.Price, last)
		if deviation > v.config.MaxPriceDeviation {
			reason := tickv1.Reason{
				Code: ReasonPriceDeviation,
				Message: fmt.Sprintf("price %s deviates %.2f%% from last accepted %s (threshold %.2f%%)",
					formatPrice(record.Price), deviation*100, formatPrice(last), v.config.MaxPriceDeviation*100),
			}
			if v.config.Strict {
				return nil, reject(reason)
			}
			outcome.Warnings = append(outcome.Warnings, reason)
			v.logger.WarnContext(ctx, "price deviation anomaly accepted in permissive mode",
				logger.Field{Key: "instrument", Value: record.Instrument},
				logger.Field{Key: "price", Value: record.Price},
				logger.Field{Key: "last_price", Value: last},
			)
		}
	}

	v.lastPrice[record.Instrument] = record.Price

	return &tickv1.PriceTick{
		Instrument:       record.Instrument,
		Price:            record.Price,
		EventTimestampMS: record.EventTimestampMS,
		Volume:           record.Volume,
		Bid:              record.Bid,
		Ask:              record.Ask,
	}, outcome
}

// LastPrice returns the last accepted price for an instrument, if any.
func (v *Validator) LastPrice(instrument string) (float64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	price, ok := v.lastPrice[instrument]
	return price, ok
}

// checkRanges validates price, timestamp and optional fields against the
// configured bounds.
func (v *Validator) checkRanges(record *wire.Record) []tickv1.Reason {
	var reasons []tickv1.Reason

	if record.Price <= 0 {
		reasons = append(reasons, tickv1.Reason{
			Code:    ReasonPriceRange,
			Message: fmt.Sprintf("price %s must be positive", formatPrice(record.Price)),
		})
	} else if record.Price >= v.config.PriceCeiling {
		reasons = append(reasons, tickv1.Reason{
			Code:    ReasonPriceRange,
			Message: fmt.Sprintf("price %s exceeds sanity ceiling %s", formatPrice(record.Price), formatPrice(v.config.PriceCeiling)),
		})
	}

	now := v.now()
	event := time.UnixMilli(record.EventTimestampMS)
	if age := now.Sub(event); age > v.config.MaxTimestampAge {
		reasons = append(reasons, tickv1.Reason{
			Code:    ReasonTimestampRange,
			Message: fmt.Sprintf("event timestamp is %s old, maximum age is %s", age.Truncate(time.Second), v.config.MaxTimestampAge),
		})
	} else if ahead := event.Sub(now); ahead > v.config.MaxClockSkew {
		reasons = append(reasons, tickv1.Reason{
			Code:    ReasonTimestampRange,
			Message: fmt.Sprintf("event timestamp is %s in the future, allowance is %s", ahead.Truncate(time.Second), v.config.MaxClockSkew),
		})
	}

	reasons = append(reasons, v.checkOptionalRange("volume", record.Volume, v.config.VolumeCeiling)...)
	reasons = append(reasons, v.checkOptionalRange("bid", record.Bid, v.config.PriceCeiling)...)
	reasons = append(reasons, v.checkOptionalRange("ask", record.Ask, v.config.PriceCeiling)...)

	return reasons
}

func (v *Validator) checkOptionalRange(name string, value *float64, ceiling float64) []tickv1.Reason {
	if value == nil {
		return nil
	}

	if *value < 0 {
		return []tickv1.Reason{{
			Code:    ReasonFieldRange,
			Message: fmt.Sprintf("%s %s must be non-negative", name, formatPrice(*value)),
		}}
	}
	if *value >= ceiling {
		return []tickv1.Reason{{
			Code:    ReasonFieldRange,
			Message: fmt.Sprintf("%s %s exceeds sanity ceiling %s", name, formatPrice(*value), formatPrice(ceiling)),
		}}
	}

	return nil
}

// checkCrossFields enforces bid <= ask and price within [bid, ask].
func checkCrossFields(record *wire.Record) []tickv1.Reason {
	var reasons []tickv1.Reason

	if record.Bid != nil && record.Ask != nil {
		if *record.Bid > *record.Ask {
			return []tickv1.Reason{{
				Code:    ReasonCrossedMarket,
				Message: fmt.Sprintf("bid %s exceeds ask %s", formatPrice(*record.Bid), formatPrice(*record.Ask)),
			}}
		}
		if record.Price < *record.Bid || record.Price > *record.Ask {
			reasons = append(reasons, tickv1.Reason{
				Code:    ReasonOutsideSpread,
				Message: fmt.Sprintf("price %s is outside [%s, %s]", formatPrice(record.Price), formatPrice(*record.Bid), formatPrice(*record.Ask)),
			})
		}
		return reasons
	}

	if record.Bid != nil && *record.Bid > record.Price {
		reasons = append(reasons, tickv1.Reason{
			Code:    ReasonOutsideSpread,
			Message: fmt.Sprintf("bid %s exceeds price %s", formatPrice(*record.Bid), formatPrice(record.Price)),
		})
	}
	if record.Ask != nil && *record.Ask < record.Price {
		reasons = append(reasons, tickv1.Reason{
			Code:    ReasonOutsideSpread,
			Message: fmt.Sprintf("ask %s is below price %s", formatPrice(*record.Ask), formatPrice(record.Price)),
		})
	}

	return reasons
}

func relativeDeviation(price, last float64) float64 {
	diff := price - last
	if diff < 0 {
		diff = -diff
	}
	return diff / last
}

func formatPrice(v float64) string {
	return fmt.Sprintf("%g", v)
}

func reject(reasons ...tickv1.Reason) tickv1.ValidationOutcome {
	return tickv1.ValidationOutcome{Passed: false, Reasons: reasons}
}
