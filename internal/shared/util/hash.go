package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey returns a filesystem-safe identifier for a user ID.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// UserPrefix is the storage namespace for a user's archived objects, with a trailing slash.
func UserPrefix(userID string) string {
	return HashUserKey(userID) + "/"
}
