package util

import (
	"github.com/google/uuid"
)

// NewConnectionID returns a uuid-v4 string to use as a connection session id.
func NewConnectionID() string {
	return uuid.NewString()
}
