// Package metadata is the CLI's local key/value store. The persisted
// session lives here between runs.
package metadata

import (
	"context"
)

// Repository is a byte-valued key/value store.
// Get returns (nil, nil) for an absent key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
