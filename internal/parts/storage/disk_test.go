package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	s, err := NewDiskStore(filepath.Join(t.TempDir(), "files"), "", zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestDiskStore_CreatesMarker(t *testing.T) {
	s := newTestStore(t)

	_, err := os.Stat(filepath.Join(s.Dir(), DefaultMarker))
	assert.NoError(t, err)
}

func TestDiskStore_PutOpen(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, "abc.step", strings.NewReader("solid"), 5, "model/step"))

	rc, err := s.Open(ctx, "abc.step")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "solid", string(data))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultMarker, "abc.step"}, names)
}

func TestDiskStore_OpenMissing(t *testing.T) {
	_, err := newTestStore(t).Open(context.Background(), "nope.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestDiskStore_RejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, key := range []string{"", "..", "../escape", "a/b", DefaultMarker} {
		err := s.Put(ctx, key, strings.NewReader("x"), 1, "")
		assert.Error(t, err, "key %q", key)
	}
}

func TestDiskStore_PurgeKeepsMarker(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Put(ctx, "one.pdf", strings.NewReader("1"), 1, ""))
	require.NoError(t, s.Put(ctx, "two.pdf", strings.NewReader("2"), 1, ""))

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultMarker}, names)
}

func TestDiskStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Put(ctx, "x.txt", strings.NewReader("x"), 1, ""))

	assert.NoError(t, s.Delete(ctx, "x.txt"))
	assert.NoError(t, s.Delete(ctx, "x.txt"))
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "id-1.step", ObjectKey("id-1", "Bracket.STEP"))
	assert.Equal(t, "id-2", ObjectKey("id-2", "README"))
}
