// Package storage provides the persistence adapter interface and its SQLite
// implementation. Each named collection is stored as a single JSON document
// and fully overwritten on every save.
package storage

import (
	"context"
	"errors"
)

// Collection names. "patients" and "incidents" are the canonical record
// collections; "users" and "session" back the mock authentication boundary.
const (
	CollectionPatients  = "patients"
	CollectionIncidents = "incidents"
	CollectionUsers     = "users"
	CollectionSession   = "session"
)

// ErrNotFound reports that a collection has never been written. Callers
// treat it as "no prior data", not as a failure.
var ErrNotFound = errors.New("storage: collection not found")

// Adapter reads and writes named collections on a durable local store.
type Adapter interface {
	// Load decodes the stored document for the named collection into dest.
	// Returns ErrNotFound when the collection has never been written.
	Load(ctx context.Context, name string, dest any) error

	// Save fully overwrites the stored document for the named collection.
	// Callers must pass the complete, already-mutated collection.
	Save(ctx context.Context, name string, v any) error

	// Delete removes the stored document for the named collection.
	Delete(ctx context.Context, name string) error

	// Close releases the underlying store.
	Close() error
}
