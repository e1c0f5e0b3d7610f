package domain

import (
	"encoding/json"
	"strings"
)

// ValueObject represents an immutable domain concept defined by its attributes.
type ValueObject interface {
	Equals(other ValueObject) bool
}

// Identity represents an account identifier shared across bounded contexts.
// Owners, subscribers, pullers and the custody account are all identities;
// the engine treats the value as opaque.
type Identity struct {
	value string
}

// NewIdentity creates an Identity from a string, trimming surrounding whitespace.
func NewIdentity(value string) Identity {
	return Identity{value: strings.TrimSpace(value)}
}

// String returns the string representation of the Identity.
func (i Identity) String() string {
	return i.value
}

// Equals checks if two identities are equal.
func (i Identity) Equals(other ValueObject) bool {
	if otherID, ok := other.(Identity); ok {
		return i.value == otherID.value
	}
	return false
}

// IsZero returns true if the Identity is empty.
func (i Identity) IsZero() bool {
	return i.value == ""
}

// MarshalJSON encodes the Identity as its account string. Identities land in
// outbox metadata read by external indexers, so the wire form must be the
// account value, not an empty object.
func (i Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.value)
}

// UnmarshalJSON decodes an Identity from its account string.
func (i *Identity) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*i = NewIdentity(value)
	return nil
}
