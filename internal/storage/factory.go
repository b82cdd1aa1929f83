package storage

import (
	"errors"
	"fmt"
)

// ErrUnknownBackend reports a telemetry store kind this build cannot serve.
var ErrUnknownBackend = errors.New("unknown telemetry store kind")

// NewStore resolves a store kind into a backend. An empty kind selects the
// in-memory store; "sqlite" needs a binary built with the sqlite tag.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}

// CloseIfSupported releases backends that hold external resources; the
// in-memory store has none and is left untouched.
func CloseIfSupported(store Store) error {
	if closer, ok := store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
