package validatorv1

import (
	"context"

	tickv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/tick/v1"
)

// Validator turns a raw record into either a valid PriceTick or an ordered
// list of named failures. Malformed input is an ordinary rejection outcome,
// not an error.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=validatorv1_mock
type Validator interface {
	// Validate returns the parsed tick and an outcome with Passed true on
	// success, or a nil tick and the ordered failure reasons on rejection.
	Validate(ctx context.Context, raw tickv1.RawRecord) (*tickv1.PriceTick, tickv1.ValidationOutcome)
}
