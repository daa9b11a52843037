package errors

// ErrorDetails represents detailed information about an error.
type ErrorDetails struct {
	// Message (required) is the user-defined error message.
	// E.g. "reconnect interval must be positive".
	Message string

	// Kind (required) is the failure category the error belongs to.
	Kind Kind

	// Field (optional) is the related field the error occurred on, if any.
	Field string

	// Object (optional) is the related object the error occurred on, if any.
	Object interface{}
}

// NewErrorDetails creates a new ErrorDetails struct with the given parameters.
func NewErrorDetails(message string, kind Kind, field string) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Kind:    kind,
		Field:   field,
	}
}

// NewErrorDetailsWithObject creates a new ErrorDetails struct with the
// offending object attached.
func NewErrorDetailsWithObject(message string, kind Kind, field string, object interface{}) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Kind:    kind,
		Field:   field,
		Object:  object,
	}
}

// Error() is used to implement the Golang `error` interface.
func (e *ErrorDetails) Error() string {
	return e.Message
}
