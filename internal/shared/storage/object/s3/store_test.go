package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"mindwell-backend/internal/shared/storage/object"
)

type fakeAPI struct {
	objects  map[string][]byte
	modified map[string]time.Time
	puts     []*s3.PutObjectInput
	pageSize int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{objects: map[string][]byte{}, modified: map[string]time.Time{}, pageSize: 1}
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Key)
	f.objects[key] = body
	f.modified[key] = time.Date(2026, time.January, 1, 0, 0, len(f.puts), 0, time.UTC)
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

// ListObjectsV2 serves one object per page so the paginator has to follow tokens.
func (f *fakeAPI) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if tok := aws.ToString(in.ContinuationToken); tok != "" {
		for i, k := range keys {
			if k == tok {
				start = i
			}
		}
	}
	end := start + f.pageSize
	if end > len(keys) {
		end = len(keys)
	}
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, s3types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(f.objects[k]))),
			LastModified: aws.Time(f.modified[k]),
		})
	}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[end])
	}
	return out, nil
}

func TestPutWritesUnderPrefixWithEncryption(t *testing.T) {
	api := newFakeAPI()
	store, err := NewWithAPI(api, "bucket", "/reports/", "")
	if err != nil {
		t.Fatalf("NewWithAPI: %v", err)
	}

	obj, err := store.Put(context.Background(), "user-1", "report.pdf", "application/pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if strings.HasPrefix(obj.Key, "reports/") {
		t.Fatalf("returned key should not carry the bucket prefix: %q", obj.Key)
	}
	if !object.OwnedBy(obj.Key, "user-1") {
		t.Fatalf("expected key owned by user-1: %q", obj.Key)
	}
	in := api.puts[0]
	if got := aws.ToString(in.Key); got != "reports/"+obj.Key {
		t.Fatalf("bucket key = %q", got)
	}
	if in.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256, got %q", in.ServerSideEncryption)
	}
	if aws.ToString(in.ContentType) != "application/pdf" {
		t.Fatalf("content type = %q", aws.ToString(in.ContentType))
	}
}

func TestPutUsesKMSKeyWhenConfigured(t *testing.T) {
	api := newFakeAPI()
	store, _ := NewWithAPI(api, "bucket", "", "kms-123")
	if _, err := store.Put(context.Background(), "user-1", "report.pdf", "application/pdf", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	in := api.puts[0]
	if in.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(in.SSEKMSKeyId) != "kms-123" {
		t.Fatalf("expected kms encryption, got %q %q", in.ServerSideEncryption, aws.ToString(in.SSEKMSKeyId))
	}
}

func TestOpenAndListRoundTrip(t *testing.T) {
	api := newFakeAPI()
	store, _ := NewWithAPI(api, "bucket", "reports", "")
	ctx := context.Background()

	first, _ := store.Put(ctx, "user-1", "a.pdf", "application/pdf", []byte("one"))
	second, _ := store.Put(ctx, "user-1", "b.pdf", "application/pdf", []byte("two"))
	if _, err := store.Put(ctx, "user-2", "c.pdf", "application/pdf", []byte("three")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rc, err := store.Open(ctx, "/"+first.Key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if string(got) != "one" {
		t.Fatalf("Open body = %q", got)
	}

	items, err := store.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Key != second.Key || items[1].Key != first.Key {
		t.Fatalf("expected newest first, got %q then %q", items[0].Key, items[1].Key)
	}
	if items[0].Size != 3 || items[0].Name != "b.pdf" {
		t.Fatalf("unexpected item: %+v", items[0])
	}
}

func TestOpenMissingIsNotFound(t *testing.T) {
	store, _ := NewWithAPI(newFakeAPI(), "bucket", "", "")
	if _, err := store.Open(context.Background(), "nope/x.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewWithAPIRequiresBucket(t *testing.T) {
	if _, err := NewWithAPI(newFakeAPI(), " ", "", ""); err == nil {
		t.Fatalf("expected bucket error")
	}
}
