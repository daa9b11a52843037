package listener

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramer_SplitInvariance(t *testing.T) {
	stream := "AAPL.O|150.60|1705323000000|1000000|150.10|150.75\n" +
		"EUR=|1.0850|1705323002000|||\n" +
		"\n" +
		"   \n" +
		"TOO|FEW|FIELDS\n" +
		"BTCUSDT|43250.5|1705323004000|||43251.0\n"

	var allAtOnce framer
	expected := allAtOnce.push([]byte(stream))
	require.Equal(t, []string{
		"AAPL.O|150.60|1705323000000|1000000|150.10|150.75",
		"EUR=|1.0850|1705323002000|||",
		"TOO|FEW|FIELDS",
		"BTCUSDT|43250.5|1705323004000|||43251.0",
	}, expected)

	// feeding one byte at a time must yield the identical record sequence
	var byteAtATime framer
	var got []string
	for i := 0; i < len(stream); i++ {
		got = append(got, byteAtATime.push([]byte{stream[i]})...)
	}
	assert.Equal(t, expected, got)

	// and so must an arbitrary mid-record split
	var splitAtSeven framer
	got = splitAtSeven.push([]byte(stream[:7]))
	got = append(got, splitAtSeven.push([]byte(stream[7:]))...)
	assert.Equal(t, expected, got)
}

func TestFramer_PartialLineStaysBuffered(t *testing.T) {
	var f framer

	records := f.push([]byte("AAPL.O|150"))
	assert.Empty(t, records)
	assert.Equal(t, 10, f.pending())

	records = f.push([]byte(".60|1705323000000|||\nEUR"))
	require.Equal(t, []string{"AAPL.O|150.60|1705323000000|||"}, records)
	assert.Equal(t, 3, f.pending())
}

func TestFramer_TrimsCarriageReturn(t *testing.T) {
	var f framer

	records := f.push([]byte("AAPL.O|150.60|1705323000000|||\r\n"))
	require.Equal(t, []string{"AAPL.O|150.60|1705323000000|||"}, records)
}

func TestFramer_DiscardDropsPartial(t *testing.T) {
	var f framer

	f.push([]byte("AAPL.O|150.60"))
	require.Equal(t, 13, f.pending())

	f.discard()
	assert.Zero(t, f.pending())
	assert.Empty(t, f.push([]byte("\n")))
}
