package object

import (
	"errors"
	"strings"
	"testing"
	"time"

	"mindwell-backend/internal/shared/util"
)

func TestOwnedBy(t *testing.T) {
	prefix := util.HashUserKey("user-1")
	tests := []struct {
		name   string
		key    string
		userID string
		want   bool
	}{
		{name: "own key", key: prefix + "/abc_report.pdf", userID: "user-1", want: true},
		{name: "leading slash", key: "/" + prefix + "/abc_report.pdf", userID: "user-1", want: true},
		{name: "other user", key: prefix + "/abc_report.pdf", userID: "user-2", want: false},
		{name: "traversal", key: prefix + "/../x.pdf", userID: "user-1", want: false},
		{name: "bare prefix", key: prefix + "/", userID: "user-1", want: false},
		{name: "no user", key: prefix + "/a.pdf", userID: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OwnedBy(tt.key, tt.userID); got != tt.want {
				t.Fatalf("OwnedBy(%q, %q) = %v, want %v", tt.key, tt.userID, got, tt.want)
			}
		})
	}
}

func TestNewKey(t *testing.T) {
	at := time.Date(2026, time.March, 2, 8, 30, 0, 0, time.UTC)
	key, err := NewKey("user-1", "mindwell_report_simple.pdf", at)
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	if !OwnedBy(key, "user-1") {
		t.Fatalf("expected key %q to be owned by user-1", key)
	}
	if !strings.Contains(key, "/20260302T083000Z_") {
		t.Fatalf("expected timestamp in key, got %q", key)
	}
	if got := NameFromKey(key); got != "mindwell_report_simple.pdf" {
		t.Fatalf("NameFromKey = %q", got)
	}
	other, _ := NewKey("user-1", "mindwell_report_simple.pdf", at)
	if other == key {
		t.Fatalf("expected unique keys")
	}

	if _, err := NewKey("", "a.pdf", at); !errors.Is(err, ErrNoOwner) {
		t.Fatalf("expected ErrNoOwner, got %v", err)
	}
	if _, err := NewKey("u", "../a.pdf", at); err == nil {
		t.Fatalf("expected invalid name error")
	}
}

func TestSortNewestFirst(t *testing.T) {
	t0 := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	items := []Object{
		{Key: "a", CreatedAt: t0},
		{Key: "c", CreatedAt: t0.Add(time.Hour)},
		{Key: "b", CreatedAt: t0},
	}
	SortNewestFirst(items)
	if items[0].Key != "c" || items[1].Key != "b" || items[2].Key != "a" {
		t.Fatalf("unexpected order: %+v", items)
	}
}
