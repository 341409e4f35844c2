// README: Shared identifier type for stored trips and itineraries.
package types

import "github.com/google/uuid"

type ID string

// NewID returns a random (v4) UUID.
func NewID() ID {
	return ID(uuid.NewString())
}

// ParseID reports whether s is a well-formed UUID and returns it normalized.
func ParseID(s string) (ID, bool) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return ID(u.String()), true
}
