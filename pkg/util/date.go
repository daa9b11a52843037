package util

import "time"

// LatencyMillis computes the arrival latency of a record in milliseconds:
// receipt time minus the producer-supplied event timestamp. The result may
// be negative when the producer clock runs ahead of the receiver clock.
func LatencyMillis(receipt time.Time, eventTimestampMillis int64) int64 {
	return receipt.UnixMilli() - eventTimestampMillis
}

// Float64Pointer converts a float64 to a pointer to a float64.
func Float64Pointer(f float64) *float64 {
	return &f
}
