// Package store defines access to pre-generated tile artifacts.
package store

import (
	"context"
	"errors"
)

// ErrNotFound reports that no artifact exists under the given key.
var ErrNotFound = errors.New("tile not found")

// TileStore reads tile artifacts by storage key.
type TileStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
}
