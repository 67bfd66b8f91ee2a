package persistence

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the requested key has no stored value.
	ErrNotFound = errors.New("persistence: not found")
)

// EventsKey is the key under which the serialized event collection is stored.
const EventsKey = "events"

// KVStore is the durable key-value collaborator backing the event store. Get
// returns ErrNotFound when the key is absent; Set replaces the stored value
// atomically.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
