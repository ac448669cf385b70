package util

import (
	"errors"
	"strings"
	"unicode"
)

var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName makes name safe as a storage key segment and in a Content-Disposition header.
// Path separators, quotes and control characters become underscores; traversal is rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', r == '"':
			return '_'
		case unicode.IsControl(r):
			return '_'
		default:
			return r
		}
	}, strings.TrimSpace(name))
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}
