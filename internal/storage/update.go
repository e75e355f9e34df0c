package storage

import (
	"context"
	"errors"
	"fmt"
)

// DefaultWriteAttempts bounds the optimistic-concurrency retry loop.
// Contention is human-driven and rare, so a small number suffices.
const DefaultWriteAttempts = 3

// Update runs a read-modify-write cycle under optimistic concurrency:
// load the record (or start from initial when absent), apply modify, write
// back with the version observed at read time, and retry on conflict.
// modify may be called multiple times and must be side-effect free.
func Update[T any](ctx context.Context, s Store, key string, initial func() T, modify func(*T) error) (T, error) {
	var value T

	for attempt := 0; attempt < DefaultWriteAttempts; attempt++ {
		loaded, version, err := GetJSON[T](ctx, s, key)
		switch {
		case err == nil:
			value = loaded
		case errors.Is(err, ErrNotFound):
			value = initial()
			version = 0
		default:
			return value, err
		}

		if err := modify(&value); err != nil {
			return value, err
		}

		err = PutJSON(ctx, s, key, value, version)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return value, err
		}
	}

	return value, fmt.Errorf("update %s: %w", key, ErrVersionConflict)
}
