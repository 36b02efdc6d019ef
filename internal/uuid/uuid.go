// Package uuid generates time-ordered identifiers for goal items and
// request tracing.
package uuid

import googleuuid "github.com/google/uuid"

// New returns a new UUIDv7 string. UUIDv7 is time-ordered, which keeps
// freshly added goal items roughly in insertion order when sorted by ID
// and makes the values friendly to b-tree indexes.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// crypto/rand failure; fall back to random v4
		return googleuuid.NewString()
	}
	return id.String()
}

// IsValid checks if a string is a valid UUID of any version.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
