package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"mindwell-backend/internal/shared/storage/object"
)

func TestPutAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	payload := []byte("%PDF-1.3\nreport body")

	obj, err := store.Put(context.Background(), "user-1", "mindwell_report_simple.pdf", "application/pdf", payload)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if obj.Size != int64(len(payload)) || obj.ContentType != "application/pdf" {
		t.Fatalf("unexpected object: %+v", obj)
	}
	if !object.OwnedBy(obj.Key, "user-1") {
		t.Fatalf("expected key %q to be owned by user-1", obj.Key)
	}
	if !strings.HasSuffix(obj.Key, "_mindwell_report_simple.pdf") || obj.Name != "mindwell_report_simple.pdf" {
		t.Fatalf("unexpected key %q name %q", obj.Key, obj.Name)
	}

	rc, err := store.Open(context.Background(), obj.Key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestListNewestFirstPerUser(t *testing.T) {
	store := New(t.TempDir())
	now := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	first, err := store.Put(context.Background(), "user-1", "a.pdf", "application/pdf", []byte("one"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	now = now.Add(time.Minute)
	second, err := store.Put(context.Background(), "user-1", "b.pdf", "application/pdf", []byte("two"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := store.Put(context.Background(), "user-2", "c.pdf", "application/pdf", []byte("three")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	items, err := store.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	keys := map[string]bool{items[0].Key: true, items[1].Key: true}
	if !keys[first.Key] || !keys[second.Key] {
		t.Fatalf("unexpected keys: %+v", items)
	}

	empty, err := store.List(context.Background(), "nobody")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %v %v", empty, err)
	}
}

func TestOpenRejectsTraversalAndMissing(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
	if _, err := store.Open(context.Background(), "abc/missing.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutRejectsBadNameAndOwner(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Put(context.Background(), "u", "../x.pdf", "application/pdf", []byte("x")); err == nil {
		t.Fatalf("expected invalid name error")
	}
	if _, err := store.Put(context.Background(), "", "x.pdf", "application/pdf", []byte("x")); !errors.Is(err, object.ErrNoOwner) {
		t.Fatalf("expected ErrNoOwner, got %v", err)
	}
}
