// Package kv provides the flat key-value namespace the entity store persists
// into. Each key holds one opaque document; callers rewrite whole values.
package kv

import "context"

// KV is a flat key-value namespace.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}
