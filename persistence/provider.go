// Package persistence defines the records and interfaces of the external
// instance store: the engine's only shared mutable resource.
package persistence

import (
	"context"
	"errors"
)

// ErrDataStoreLocked is returned by Provider.Open() if the data-store for a
// process is already open for exclusive use, either by this engine or
// another.
var ErrDataStoreLocked = errors.New("data store is locked")

// Provider is an interface used by the engine to obtain the data-store for
// each hosted process definition.
type Provider interface {
	// Open returns the data-store for a specific process definition.
	//
	// k is the identity key of the process definition. Data-stores are opened
	// for exclusive use; if the data-store is already open,
	// ErrDataStoreLocked is returned.
	Open(ctx context.Context, k string) (DataStore, error)
}
