package id

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a fresh random identifier for a stored transaction.
func New() string {
	return uuid.NewString()
}

// Parse validates an identifier and returns it in canonical form.
func Parse(s string) (string, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid identifier %q: %w", s, err)
	}
	return u.String(), nil
}

// Short returns the first block of an identifier for display.
// "6ba7b810-9dad-11d1-80b4-00c04fd430c8" -> "6ba7b810"
func Short(s string) string {
	if len(s) < 8 {
		return s
	}
	return s[:8]
}
