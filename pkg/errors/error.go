package errors

import (
	"errors"
)

// Kind classifies an error into one of the pipeline's failure categories.
// Callers branch on the kind, never on the error message.
type Kind string

const (
	// KindTransport represents a socket-level failure (refused, reset,
	// timeout). Retried with bounded backoff by the component that owns
	// the connection.
	KindTransport Kind = "transport"
	// KindDecode represents a malformed wire record. The record is dropped
	// and the connection stays open.
	KindDecode Kind = "decode"
	// KindValidation represents a business-rule violation. The record is
	// dropped and the connection stays open.
	KindValidation Kind = "validation"
	// KindPublish represents a durable-log delivery failure after retry
	// exhaustion. Surfaced to the caller as a per-record processing failure.
	KindPublish Kind = "publish"
	// KindFatal represents an unrecoverable startup failure. The process
	// exits non-zero.
	KindFatal Kind = "fatal"
	// KindUnknown is reported by KindOf for errors produced outside this
	// package.
	KindUnknown Kind = "unknown"
)

// KindOf extracts the Kind from an error chain. Errors that did not
// originate from this package report KindUnknown.
func KindOf(err error) Kind {
	var tracer *ErrorTracer
	if errors.As(err, &tracer) {
		return tracer.Kind
	}

	var details *ErrorDetails
	if errors.As(err, &details) {
		return details.Kind
	}

	return KindUnknown
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
