package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"mindwell-backend/internal/shared/storage/object"
	"mindwell-backend/internal/shared/util"
)

// API is the subset of the S3 client the archive needs.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// Store archives reports in a bucket with server-side encryption.
// Keys returned to callers never include the bucket prefix.
type Store struct {
	api      API
	bucket   string
	prefix   string
	kmsKeyID string
	now      func() time.Time
}

// New loads the default AWS config and builds a bucket-backed store.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID string) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithAPI(s3.NewFromConfig(cfg), bucket, prefix, kmsKeyID)
}

// NewWithAPI builds a store on an existing client.
func NewWithAPI(api API, bucket, prefix, kmsKeyID string) (*Store, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	return &Store{
		api:      api,
		bucket:   bucket,
		prefix:   strings.Trim(strings.TrimSpace(prefix), "/"),
		kmsKeyID: strings.TrimSpace(kmsKeyID),
		now:      time.Now,
	}, nil
}

func (s *Store) Put(ctx context.Context, userID, fileName, contentType string, body []byte) (object.Object, error) {
	createdAt := s.now().UTC()
	key, err := object.NewKey(userID, fileName, createdAt)
	if err != nil {
		return object.Object{}, err
	}

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.full(key)),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if s.kmsKeyID != "" {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		in.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return object.Object{}, fmt.Errorf("s3 put %s/%s: %w", s.bucket, s.full(key), err)
	}

	return object.Object{
		Key:         key,
		Name:        object.NameFromKey(key),
		Size:        int64(len(body)),
		ContentType: contentType,
		CreatedAt:   createdAt,
	}, nil
}

func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.full(storageKey)),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, object.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get %s/%s: %w", s.bucket, s.full(storageKey), err)
	}
	return out.Body, nil
}

// List pages through the user's namespace and returns objects newest first.
func (s *Store) List(ctx context.Context, userID string) ([]object.Object, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, object.ErrNoOwner
	}
	pages := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.full(util.UserPrefix(userID))),
	})

	items := []object.Object{}
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", s.bucket, err)
		}
		for _, o := range page.Contents {
			key := s.strip(aws.ToString(o.Key))
			items = append(items, object.Object{
				Key:       key,
				Name:      object.NameFromKey(key),
				Size:      aws.ToInt64(o.Size),
				CreatedAt: aws.ToTime(o.LastModified).UTC(),
			})
		}
	}
	object.SortNewestFirst(items)
	return items, nil
}

// full maps an archive key to the bucket key.
func (s *Store) full(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

func (s *Store) strip(bucketKey string) string {
	if s.prefix == "" {
		return bucketKey
	}
	return strings.TrimPrefix(bucketKey, s.prefix+"/")
}

var _ object.ObjectStore = (*Store)(nil)
