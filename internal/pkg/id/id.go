package id

import (
	"github.com/google/uuid"
)

// New returns a random UUID string.
func New() string {
	return uuid.New().String()
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// OrNew returns s when it is a valid UUID, otherwise a fresh one.
func OrNew(s string) string {
	if s != "" && IsValid(s) {
		return s
	}
	return New()
}
