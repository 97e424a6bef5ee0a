// Package storage provides the durable key-value store backing the cart.
// The cart store is the only writer; keys are partitioned per restaurant.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Adapter is the persistence interface the cart store depends on. Any
// key-value backing store can implement it.
type Adapter interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close()
}
