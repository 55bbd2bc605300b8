package model

import "context"

// KVStore is a durable integer key-value store that survives process
// suspension. A missing key is reported as ErrNotFound.
type KVStore interface {
	GetValue(ctx context.Context, key string) (int64, error)
	SetValue(ctx context.Context, key string, value int64) error
	RemoveValue(ctx context.Context, key string) error
}
