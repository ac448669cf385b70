// Package object archives generated files per user on a pluggable backend.
package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"mindwell-backend/internal/shared/util"
)

var (
	// ErrNotFound is returned when a storage key has no object behind it.
	ErrNotFound = errors.New("object not found")
	ErrNoOwner  = errors.New("object owner is required")
)

const keyTimeLayout = "20060102T150405Z"

// Object describes one archived file.
type Object struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ObjectStore saves, lists and reads archived files. Keys are namespaced per user.
type ObjectStore interface {
	Put(ctx context.Context, userID, fileName, contentType string, body []byte) (Object, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	List(ctx context.Context, userID string) ([]Object, error)
}

// NewKey builds a unique key for fileName under userID's namespace.
// Keys sort by creation time within a namespace.
func NewKey(userID, fileName string, at time.Time) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrNoOwner
	}
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return util.UserPrefix(userID) + at.UTC().Format(keyTimeLayout) + "_" + id + "_" + name, nil
}

// NameFromKey returns the original file name embedded in a key.
func NameFromKey(storageKey string) string {
	base := storageKey[strings.LastIndex(storageKey, "/")+1:]
	parts := strings.SplitN(base, "_", 3)
	if len(parts) == 3 {
		return parts[2]
	}
	return base
}

// OwnedBy reports whether storageKey lives under the namespace Put uses for userID.
func OwnedBy(storageKey, userID string) bool {
	if userID == "" {
		return false
	}
	key := strings.TrimLeft(storageKey, "/")
	if strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(key, util.UserPrefix(userID)) && len(key) > len(util.UserPrefix(userID))
}

// SortNewestFirst orders objects by creation time, newest first, breaking ties by key.
func SortNewestFirst(items []Object) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].Key > items[j].Key
	})
}
