package database

import (
	"github.com/google/uuid"
)

// UUIDToBinary converts a UUID to its 16-byte form for MySQL BINARY(16) columns.
func UUIDToBinary(id uuid.UUID) []byte {
	b, _ := id.MarshalBinary()
	return b
}

// UUIDFromBinary parses a MySQL BINARY(16) value back into a UUID.
func UUIDFromBinary(b []byte) (uuid.UUID, error) {
	var id uuid.UUID
	if err := id.UnmarshalBinary(b); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// NullableUUIDToBinary converts an optional UUID to a driver value, nil when absent.
func NullableUUIDToBinary(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return UUIDToBinary(*id)
}

// NullableUUIDFromBinary parses an optional BINARY(16) value. An empty value yields nil.
func NullableUUIDFromBinary(b []byte) (*uuid.UUID, error) {
	if len(b) == 0 {
		return nil, nil
	}
	id, err := UUIDFromBinary(b)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
