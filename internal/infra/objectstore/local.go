// Package objectstore keeps uploaded objects on local disk, grouped by bucket,
// and hands out URLs under a public prefix the router serves statically.
package objectstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"techpoints/internal/pkg/config"
	"techpoints/internal/pkg/errs"
)

var ErrInvalidObjectPath = errs.New("invalid object path")

type LocalStore struct {
	root          string
	publicBaseURL string
}

func NewLocalStore(cfg config.StorageConfig) *LocalStore {
	return &LocalStore{
		root:          cfg.Root,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) PublicBaseURL() string { return s.publicBaseURL }

func (s *LocalStore) Upload(ctx context.Context, bucket, objectPath string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, rel, err := s.resolve(bucket, objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", errs.Wrap(err, "create object directory")
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", errs.Wrap(err, "write object")
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return "", errs.Wrap(err, "commit object")
	}
	return s.publicBaseURL + "/" + rel, nil
}

// Delete is idempotent; a missing object is not an error.
func (s *LocalStore) Delete(ctx context.Context, bucket, objectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, _, err := s.resolve(bucket, objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.Wrap(err, "delete object")
	}
	return nil
}

// ObjectPath maps a public URL produced by Upload back to its bucket and path.
func (s *LocalStore) ObjectPath(url string) (bucket, objectPath string, ok bool) {
	rest, found := strings.CutPrefix(url, s.publicBaseURL+"/")
	if !found {
		return "", "", false
	}
	bucket, objectPath, ok = strings.Cut(rest, "/")
	return bucket, objectPath, ok && bucket != "" && objectPath != ""
}

func (s *LocalStore) resolve(bucket, objectPath string) (string, string, error) {
	rel := path.Clean(path.Join(bucket, objectPath))
	if bucket == "" || objectPath == "" || strings.Contains(bucket, "/") ||
		rel == "." || strings.HasPrefix(rel, "../") || strings.HasPrefix(rel, "/") ||
		!strings.HasPrefix(rel, bucket+"/") {
		return "", "", ErrInvalidObjectPath
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), rel, nil
}
