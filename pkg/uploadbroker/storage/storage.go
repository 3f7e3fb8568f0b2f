// Package storage defines the broker's view of the object store. The broker
// never reads or writes object bytes; it only confirms that a claimed upload
// actually landed.
package storage

import (
	"context"
	"fmt"
)

// ObjectStore checks for the presence of stored objects.
type ObjectStore interface {
	// Exists reports whether an object with the given key has been written.
	// A missing object is not an error.
	Exists(ctx context.Context, objectKey string) (bool, error)
}

// StorageError represents an error related to a storage operation
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
