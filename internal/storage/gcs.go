package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const expiresAtMetadataKey = "expires-at"

// GCSStorage implements Store on top of a Google Cloud Storage bucket.
// Each key is one object; its expiry lives in the object metadata.
type GCSStorage struct {
	client       *storage.Client
	bucket       string
	objectPrefix string
	now          func() time.Time
}

// NewGCSStorage creates a new GCSStorage instance
func NewGCSStorage(ctx context.Context, bucketName, objectPrefix, credentialsFile string) (*GCSStorage, error) {
	var client *storage.Client
	var err error

	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		// Use application default credentials
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client:       client,
		bucket:       bucketName,
		objectPrefix: objectPrefix,
		now:          time.Now,
	}, nil
}

// Get reads the object stored under key if it has not expired.
func (s *GCSStorage) Get(ctx context.Context, key string) ([]byte, error) {
	obj := s.client.Bucket(s.bucket).Object(s.objectName(key))

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read object attributes: %w", err)
	}

	if s.expired(attrs) {
		return nil, ErrNotFound
	}

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return data, nil
}

// Set uploads value under key with an expiry of now + ttl.
func (s *GCSStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := s.now().Add(ttl)

	writer := s.client.Bucket(s.bucket).Object(s.objectName(key)).NewWriter(ctx)
	writer.ContentType = "application/json"
	writer.CustomTime = expiresAt
	writer.Metadata = map[string]string{
		expiresAtMetadataKey: strconv.FormatInt(expiresAt.UnixMilli(), 10),
	}

	if _, err := writer.Write(value); err != nil {
		writer.Close()
		return fmt.Errorf("failed to upload object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload: %w", err)
	}
	return nil
}

// Purge deletes expired cache objects under the configured prefix. Objects
// without the expiry metadata written by Set are never touched.
func (s *GCSStorage) Purge(ctx context.Context) (int, error) {
	bucket := s.client.Bucket(s.bucket)
	it := bucket.Objects(ctx, &storage.Query{Prefix: s.objectPrefix})

	removed := 0
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return removed, fmt.Errorf("failed to list objects: %w", err)
		}
		if !s.purgeable(attrs) {
			continue
		}

		err = bucket.Object(attrs.Name).Delete(ctx)
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return removed, fmt.Errorf("failed to delete %s: %w", attrs.Name, err)
		}
		removed++
	}

	return removed, nil
}

// Close closes the GCS client
func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func (s *GCSStorage) objectName(key string) string {
	return path.Join(s.objectPrefix, objectKey(key))
}

func (s *GCSStorage) expired(attrs *storage.ObjectAttrs) bool {
	if expiresAt, ok := metadataExpiry(attrs); ok {
		return !s.now().Before(expiresAt)
	}
	// Objects written without metadata fall back to the custom time
	if attrs.CustomTime.IsZero() {
		return false
	}
	return !s.now().Before(attrs.CustomTime)
}

// purgeable reports whether attrs describe an expired object written by Set.
func (s *GCSStorage) purgeable(attrs *storage.ObjectAttrs) bool {
	expiresAt, ok := metadataExpiry(attrs)
	return ok && !s.now().Before(expiresAt)
}

// metadataExpiry returns the expiry recorded in the object metadata. A
// malformed value reads as already expired.
func metadataExpiry(attrs *storage.ObjectAttrs) (time.Time, bool) {
	raw, ok := attrs.Metadata[expiresAtMetadataKey]
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, true
	}
	return time.UnixMilli(ms), true
}
