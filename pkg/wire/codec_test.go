package wire

import (
	"testing"

	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/errors"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		record Record
	}{
		{
			name: "all fields present",
			record: Record{
				Instrument:       "AAPL.O",
				Price:            150.60,
				EventTimestampMS: 1705323000000,
				Volume:           util.Float64Pointer(1000000),
				Bid:              util.Float64Pointer(150.10),
				Ask:              util.Float64Pointer(150.75),
			},
		},
		{
			name: "minimal form",
			record: Record{
				Instrument:       "EUR=",
				Price:            1.0850,
				EventTimestampMS: 1705323002000,
			},
		},
		{
			name: "bid only",
			record: Record{
				Instrument:       "BTCUSDT",
				Price:            43250.5,
				EventTimestampMS: 1705323004000,
				Bid:              util.Float64Pointer(43250.0),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			line := Encode(tc.record)
			decoded, err := Decode(line)
			require.NoError(t, err)
			assert.Equal(t, &tc.record, decoded)
		})
	}
}

func TestCodec_Encode(t *testing.T) {
	line := Encode(Record{
		Instrument:       "AAPL.O",
		Price:            150.60,
		EventTimestampMS: 1705323000000,
		Volume:           util.Float64Pointer(1000000),
		Bid:              util.Float64Pointer(150.10),
		Ask:              util.Float64Pointer(150.75),
	})
	assert.Equal(t, "AAPL.O|150.6|1705323000000|1000000|150.1|150.75", line)

	minimal := Encode(Record{
		Instrument:       "EUR=",
		Price:            1.0850,
		EventTimestampMS: 1705323002000,
	})
	assert.Equal(t, "EUR=|1.085|1705323002000|||", minimal)
}

func TestCodec_Decode(t *testing.T) {
	testCases := []struct {
		name     string
		line     string
		assertFn func(t *testing.T, record *Record, err error)
	}{
		{
			name: "uppercases instrument",
			line: "aapl.o|150.60|1705323000000|||",
			assertFn: func(t *testing.T, record *Record, err error) {
				require.NoError(t, err)
				assert.Equal(t, "AAPL.O", record.Instrument)
			},
		},
		{
			name: "too few fields",
			line: "TOO|FEW|FIELDS",
			assertFn: func(t *testing.T, record *Record, err error) {
				require.Error(t, err)
				assert.Nil(t, record)
				assert.True(t, errors.IsKind(err, errors.KindDecode))
				assert.Contains(t, err.Error(), "expected 6 fields, got 3")
			},
		},
		{
			name: "too many fields",
			line: "AAPL.O|150.60|1705323000000|||extra|",
			assertFn: func(t *testing.T, record *Record, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "expected 6 fields, got 7")
			},
		},
		{
			name: "instrument too short",
			line: "A|150.60|1705323000000|||",
			assertFn: func(t *testing.T, record *Record, err error) {
				require.Error(t, err)
				assert.True(t, errors.IsKind(err, errors.KindDecode))
			},
		},
		{
			name: "instrument with illegal characters",
			line: "AAPL$O|150.60|1705323000000|||",
			assertFn: func(t *testing.T, record *Record, err error) {
				require.Error(t, err)
			},
		},
		{
			name: "price not a number",
			line: "AAPL.O|abc|1705323000000|||",
			assertFn: func(t *testing.T, record *Record, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "price")
			},
		},
		{
			name: "price missing",
			line: "AAPL.O||1705323000000|||",
			assertFn: func(t *testing.T, record *Record, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "price is required")
			},
		},
		{
			name: "timestamp not an integer",
			line: "AAPL.O|150.60|not-a-ts|||",
			assertFn: func(t *testing.T, record *Record, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "timestamp")
			},
		},
		{
			name: "optional field malformed",
			line: "AAPL.O|150.60|1705323000000|x||",
			assertFn: func(t *testing.T, record *Record, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "volume")
			},
		},
		{
			name: "empty optional fields decode as absent",
			line: "EUR=|1.0850|1705323002000|||",
			assertFn: func(t *testing.T, record *Record, err error) {
				require.NoError(t, err)
				assert.Nil(t, record.Volume)
				assert.Nil(t, record.Bid)
				assert.Nil(t, record.Ask)
			},
		},
		{
			name: "negative price still decodes",
			line: "AAPL.O|-5|1705323000000|||",
			assertFn: func(t *testing.T, record *Record, err error) {
				// shape and type only; range checks are the validator's job
				require.NoError(t, err)
				assert.Equal(t, -5.0, record.Price)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			record, err := Decode(tc.line)
			tc.assertFn(t, record, err)
		})
	}
}
