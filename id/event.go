package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the kind of event encoded in a TypeID.
type Prefix string

// PrefixAudit tags audit trail entries.
const PrefixAudit Prefix = "audit"

// NewEventID generates a K-sortable event identifier such as
// "audit_01h2xcejqtf2nbrexx3vqjhp41".
// It panics if prefix is not a valid TypeID prefix (programming error).
func NewEventID(prefix Prefix) string {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return tid.String()
}

// ParseEventID validates an event identifier and returns its prefix.
func ParseEventID(s string) (Prefix, error) {
	tid, err := typeid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("id: parse event %q: %w", s, err)
	}

	return Prefix(tid.Prefix()), nil
}
