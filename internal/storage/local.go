package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const localFileExt = ".json"

// LocalFileStorage implements Store with one JSON file per key.
type LocalFileStorage struct {
	dir string
	now func() time.Time
}

type localRecord struct {
	ExpiresAt time.Time `json:"expires_at"`
	Value     []byte    `json:"value"`
}

// NewLocalFileStorage creates a new local file store rooted at dir.
func NewLocalFileStorage(dir string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return &LocalFileStorage{
		dir: dir,
		now: time.Now,
	}, nil
}

// Get returns the value stored under key.
func (s *LocalFileStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.pathFor(key)
	record, err := readLocalRecord(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !s.now().Before(record.ExpiresAt) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove expired entry: %w", err)
		}
		return nil, ErrNotFound
	}

	return record.Value, nil
}

// Set stores value under key until ttl elapses.
func (s *LocalFileStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(localRecord{
		ExpiresAt: s.now().Add(ttl),
		Value:     value,
	})
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	// Write to a temp file first so readers never see a partial record
	tmp, err := os.CreateTemp(s.dir, "tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.pathFor(key)); err != nil {
		return fmt.Errorf("failed to commit entry: %w", err)
	}
	return nil
}

// Purge removes every expired entry and returns how many were removed.
func (s *LocalFileStorage) Purge(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory: %w", err)
	}

	now := s.now()
	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), localFileExt) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		record, err := readLocalRecord(path)
		if err != nil {
			continue
		}
		if now.Before(record.ExpiresAt) {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}

	return removed, nil
}

// Close is a no-op for the local store.
func (s *LocalFileStorage) Close() error {
	return nil
}

func (s *LocalFileStorage) pathFor(key string) string {
	return filepath.Join(s.dir, objectKey(key)+localFileExt)
}

// objectKey maps an arbitrary cache key to a fixed-length name safe for
// files and object paths.
func objectKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func readLocalRecord(path string) (*localRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var record localRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode entry %s: %w", filepath.Base(path), err)
	}
	return &record, nil
}
