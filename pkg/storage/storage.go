// Package storage provides the small key-value stores that back persisted
// preferences, calculation history and the offline asset cache.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// Store is a flat string key-value store. Implementations are safe for
// concurrent use; concurrent writes to one key are last-writer-wins.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys lists all keys with the given prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
