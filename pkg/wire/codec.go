// Package wire implements the line protocol shared by producers and the
// ingestor: one tick per newline-terminated line of six pipe-delimited
// fields, `INSTRUMENT|PRICE|TIMESTAMP_MS|VOLUME|BID|ASK`. Optional fields
// serialize as empty strings. The codec checks shape and type only; business
// rules live in the validation engine.
package wire

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/errors"
)

const (
	// Delimiter separates the six fields of a record.
	Delimiter = "|"

	// FieldCount is the exact number of fields a record carries. Fewer or
	// more is a hard decode failure, never partial acceptance.
	FieldCount = 6
)

var instrumentPattern = regexp.MustCompile(`^[A-Za-z0-9.=]{2,20}$`)

// Record is the structurally valid field tuple of one wire line. Optional
// fields are nil when absent.
type Record struct {
	Instrument       string
	Price            float64
	EventTimestampMS int64
	Volume           *float64
	Bid              *float64
	Ask              *float64
}

// Encode serializes a record as a single line without the trailing newline.
func Encode(r Record) string {
	fields := [FieldCount]string{
		r.Instrument,
		formatDecimal(r.Price),
		strconv.FormatInt(r.EventTimestampMS, 10),
		formatOptional(r.Volume),
		formatOptional(r.Bid),
		formatOptional(r.Ask),
	}

	return strings.Join(fields[:], Delimiter)
}

// Decode parses one line into a record. The returned error names the
// arity or format rule that was violated.
func Decode(line string) (*Record, error) {
	fields := strings.Split(line, Delimiter)
	if len(fields) != FieldCount {
		return nil, errors.NewTracer(errors.KindDecode,
			fmt.Sprintf("expected %d fields, got %d", FieldCount, len(fields)))
	}

	instrument := strings.TrimSpace(fields[0])
	if !instrumentPattern.MatchString(instrument) {
		return nil, errors.NewTracer(errors.KindDecode,
			fmt.Sprintf("instrument %q does not match [A-Za-z0-9.=]{2,20}", instrument))
	}

	price, err := parseDecimal(fields[1], "price")
	if err != nil {
		return nil, err
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
	if err != nil {
		return nil, errors.NewTracer(errors.KindDecode,
			fmt.Sprintf("timestamp %q is not an integer", strings.TrimSpace(fields[2])))
	}

	volume, err := parseOptional(fields[3], "volume")
	if err != nil {
		return nil, err
	}

	bid, err := parseOptional(fields[4], "bid")
	if err != nil {
		return nil, err
	}

	ask, err := parseOptional(fields[5], "ask")
	if err != nil {
		return nil, err
	}

	return &Record{
		Instrument:       strings.ToUpper(instrument),
		Price:            price,
		EventTimestampMS: ts,
		Volume:           volume,
		Bid:              bid,
		Ask:              ask,
	}, nil
}

// parseDecimal parses a mandatory decimal field.
func parseDecimal(raw, name string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, errors.NewTracer(errors.KindDecode,
			fmt.Sprintf("%s is required", name))
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, errors.NewTracer(errors.KindDecode,
			fmt.Sprintf("%s %q is not a decimal number", name, trimmed))
	}

	return value, nil
}

// parseOptional parses an optional decimal field. The empty string is the
// sentinel for "field absent".
func parseOptional(raw, name string) (*float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, errors.NewTracer(errors.KindDecode,
			fmt.Sprintf("%s %q is not a decimal number", name, trimmed))
	}

	return &value, nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatDecimal(*v)
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
