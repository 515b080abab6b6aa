// Package filestore serves tile artifacts from a local directory laid
// out by the tile-generation pipeline.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openglam/tilegate/internal/core/observability"
	"github.com/openglam/tilegate/internal/store"
)

type Store struct {
	root string
}

func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("data path is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("data path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data path is not a directory: %s", root)
	}
	return &Store{root: root}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Keys from the resolver are already validated; still never follow
	// one outside the root.
	if !validKey(key) {
		return nil, store.ErrNotFound
	}

	start := time.Now()
	b, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(key)))
	observability.ObserveStoreOp("file_read", err, time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("read tile %q: %w", key, err)
	}
	return b, nil
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
