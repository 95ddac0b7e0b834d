// Package storage holds uploaded artifacts (CAD models, documents) keyed by
// their stored name: the file UUID plus the original extension.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// DefaultMarker is the reserved file kept in the storage area by Purge.
const DefaultMarker = ".gitkeep"

var ErrObjectNotFound = errors.New("object not found")

// Store is the file-storage area.
type Store interface {
	// Put writes the object and returns only once it is durable.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// Purge removes every object except the reserved marker and returns how many were removed.
	Purge(ctx context.Context) (int, error)
	List(ctx context.Context) ([]string, error)
}

// ObjectKey builds the stored name for a file id and its original name.
func ObjectKey(id, originalName string) string {
	return id + strings.ToLower(filepath.Ext(originalName))
}

func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, `/\`) && key != "." && key != ".."
}
