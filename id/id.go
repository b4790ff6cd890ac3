// Package id defines the identifier types used by the subscription directory.
//
// Records are keyed by document-store ObjectIDs rendered as 24 lowercase hex
// characters. Audit and lifecycle events use K-sortable TypeIDs instead, see
// NewEventID.
package id

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ID is the record identifier for subscriptions.
// The zero value is Nil and never identifies a stored record.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receiver for UnmarshalText.
type ID struct {
	inner bson.ObjectID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// SubscriptionID identifies a subscription record.
type SubscriptionID = ID

// Codec reports whether a string is a well-formed record identifier.
type Codec interface {
	IsValid(s string) bool
}

// CodecFunc adapts a predicate to a Codec.
type CodecFunc func(s string) bool

// IsValid implements Codec.
func (f CodecFunc) IsValid(s string) bool { return f(s) }

// ObjectIDCodec validates the 24-hex ObjectID convention.
var ObjectIDCodec Codec = CodecFunc(IsValid)

// New generates a new unique record ID.
func New() ID {
	return ID{inner: bson.NewObjectID(), valid: true}
}

// FromObjectID wraps a driver ObjectID. The zero ObjectID maps to Nil.
func FromObjectID(oid bson.ObjectID) ID {
	if oid.IsZero() {
		return Nil
	}
	return ID{inner: oid, valid: true}
}

// IsValid reports whether s is a 24 character hexadecimal identifier.
func IsValid(s string) bool {
	_, err := bson.ObjectIDFromHex(s)
	return err == nil
}

// Parse parses a 24-hex identifier. Upper-case hex is accepted and
// normalised to lower case.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	oid, err := bson.ObjectIDFromHex(strings.ToLower(s))
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: oid, valid: true}, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// String returns the hex representation, or "" for Nil.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.Hex()
}

// ObjectID returns the driver representation of the ID.
func (i ID) ObjectID() bson.ObjectID {
	return i.inner
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}
