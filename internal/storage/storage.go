// Package storage defines the record-store port every service persists
// through. Records are whole JSON documents under fixed logical keys; the
// store offers per-key atomicity plus an optimistic-concurrency write for
// read-modify-write callers.
package storage

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned by Get when no record exists under the key.
	ErrNotFound = errors.New("storage: record not found")

	// ErrVersionConflict is returned by SetVersioned when the record was
	// modified since the version the caller read.
	ErrVersionConflict = errors.New("storage: version conflict")
)

// Record is a stored document plus the version stamp maintained by the
// store. Version 0 means the record does not exist yet.
type Record struct {
	Data    []byte
	Version int64
}

type Store interface {
	// Get returns the record under key, or ErrNotFound.
	Get(ctx context.Context, key string) (Record, error)

	// Set writes the record unconditionally, bumping its version.
	Set(ctx context.Context, key string, data []byte) error

	// SetVersioned writes only if the stored version still equals
	// expectedVersion (0 to create). Returns ErrVersionConflict otherwise.
	SetVersioned(ctx context.Context, key string, data []byte, expectedVersion int64) error

	// Delete removes the record. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// GetJSON loads and decodes the record under key. The zero value of T and
// version 0 come back with ErrNotFound when the record is absent, so
// callers can fall through to defaults.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, int64, error) {
	var value T

	rec, err := s.Get(ctx, key)
	if err != nil {
		return value, 0, err
	}

	if err := json.Unmarshal(rec.Data, &value); err != nil {
		return value, 0, err
	}
	return value, rec.Version, nil
}

// PutJSON encodes value and writes it with SetVersioned.
func PutJSON(ctx context.Context, s Store, key string, value any, expectedVersion int64) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.SetVersioned(ctx, key, data, expectedVersion)
}
