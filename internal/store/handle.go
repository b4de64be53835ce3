package store

import (
	"fmt"
	"strconv"
	"strings"
)

// ObjectID is an opaque handle referencing an object held by the daemon.
// It identifies the object but does not keep it alive, and it remains valid
// after the client that produced it is closed.
type ObjectID uint64

// String renders the canonical textual form: "o" followed by 16 lowercase
// hex digits.
func (id ObjectID) String() string {
	return fmt.Sprintf("o%016x", uint64(id))
}

// ParseObjectID parses the canonical textual form produced by String.
func ParseObjectID(value string) (ObjectID, error) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) < 2 || trimmed[0] != 'o' {
		return 0, fmt.Errorf("malformed object id %q", value)
	}
	parsed, err := strconv.ParseUint(trimmed[1:], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed object id %q: %w", value, err)
	}
	return ObjectID(parsed), nil
}

// ObjectView is a read-only view over a resolved object.
type ObjectView struct {
	ID       ObjectID
	Typename string
	Size     uint64
	Content  []byte
}
