package ingestv1

import (
	"context"

	tickv1 "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/domain/tick/v1"
)

// RecordHandler consumes raw records extracted by the connection manager, in
// arrival order per connection. A returned error marks a per-record
// processing failure; it never terminates the connection.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=ingestv1_mock
type RecordHandler interface {
	Handle(ctx context.Context, raw tickv1.RawRecord) error
}
