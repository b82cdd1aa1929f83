package storage

import (
	"errors"
	"testing"
)

func TestNewStoreKinds(t *testing.T) {
	store, err := NewStore("memory", "")
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("memory kind produced %T", store)
	}
	if store, err := NewStore("", ""); err != nil {
		t.Fatalf("default kind: %v", err)
	} else if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("default kind produced %T", store)
	}
	if _, err := NewStore("postgres", ""); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("unsupported backend: err = %v, want ErrUnknownBackend", err)
	}
	if err := CloseIfSupported(NewMemoryStore()); err != nil {
		t.Fatalf("close without closer: %v", err)
	}
}
