package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"mindwell-backend/internal/shared/storage/object"
	"mindwell-backend/internal/shared/util"
)

// Store archives objects on the local filesystem, one directory per user namespace.
type Store struct {
	baseDir string
	now     func() time.Time
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

// Put writes body under a fresh key in the user's namespace.
func (s *Store) Put(ctx context.Context, userID, fileName, contentType string, body []byte) (object.Object, error) {
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}
	createdAt := s.now().UTC()
	key, err := object.NewKey(userID, fileName, createdAt)
	if err != nil {
		return object.Object{}, err
	}

	full := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return object.Object{}, fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return object.Object{}, fmt.Errorf("create file: %w", err)
	}
	written, err := io.Copy(f, bytes.NewReader(body))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return object.Object{}, fmt.Errorf("write body: %w", err)
	}

	return object.Object{
		Key:         key,
		Name:        object.NameFromKey(key),
		Size:        written,
		ContentType: contentType,
		CreatedAt:   createdAt,
	}, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(storageKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, object.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// List returns the user's archived objects, newest first.
func (s *Store) List(ctx context.Context, userID string) ([]object.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, object.ErrNoOwner
	}
	ns := util.HashUserKey(userID)
	entries, err := os.ReadDir(filepath.Join(s.baseDir, ns))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []object.Object{}, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}

	items := make([]object.Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		key := path.Join(ns, e.Name())
		items = append(items, object.Object{
			Key:       key,
			Name:      object.NameFromKey(key),
			Size:      info.Size(),
			CreatedAt: info.ModTime().UTC(),
		})
	}
	object.SortNewestFirst(items)
	return items, nil
}

func (s *Store) resolve(storageKey string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(storageKey, "/")))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	return filepath.Join(s.baseDir, clean), nil
}

var _ object.ObjectStore = (*Store)(nil)
