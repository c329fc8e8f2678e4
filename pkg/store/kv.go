package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store: key not found")

// KV is the durable key-value storage the client keeps its state in.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
