//go:build unit

package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"techpoints/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *LocalStore {
	t.Helper()
	return NewLocalStore(config.StorageConfig{Root: t.TempDir(), PublicBaseURL: "/static/"})
}

func TestLocalStore_UploadAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	url, err := s.Upload(ctx, "product-images", "p1/photo.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "/static/product-images/p1/photo.png", url)

	b, err := os.ReadFile(filepath.Join(s.Root(), "product-images", "p1", "photo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(b))

	bucket, p, ok := s.ObjectPath(url)
	require.True(t, ok)
	assert.Equal(t, "product-images", bucket)
	assert.Equal(t, "p1/photo.png", p)

	require.NoError(t, s.Delete(ctx, bucket, p))
	require.NoError(t, s.Delete(ctx, bucket, p), "second delete is a no-op")

	_, err = os.Stat(filepath.Join(s.Root(), "product-images", "p1", "photo.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, tc := range []struct{ bucket, path string }{
		{"product-images", "../../etc/passwd"},
		{"", "a.png"},
		{"product-images", ""},
		{"a/b", "c.png"},
	} {
		_, err := s.Upload(ctx, tc.bucket, tc.path, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidObjectPath, "%s/%s", tc.bucket, tc.path)
	}
}

func TestLocalStore_ObjectPathForeignURL(t *testing.T) {
	s := newStore(t)
	_, _, ok := s.ObjectPath("https://cdn.example.com/x.png")
	assert.False(t, ok)
}
