// Package storage holds the object store side of a file: opaque bytes under a
// key in one bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrObjectStore matches every error returned by an ObjectStore.
var ErrObjectStore = errors.New("object store failure")

type ObjectStore interface {
	// Put writes body under key and returns the object's locator. A failed
	// Put never leaves a partially written object visible under key.
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	// Delete removes the object addressed by locator. Deleting an object that
	// does not exist succeeds.
	Delete(ctx context.Context, locator string) error
}

// Presigner issues time-limited download URLs.
type Presigner interface {
	PresignGet(ctx context.Context, locator string, ttl time.Duration) (string, error)
}

// Error carries the operation and key of a failed object store call.
type Error struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("object store %s (bucket %s): %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("object store %s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrObjectStore }
