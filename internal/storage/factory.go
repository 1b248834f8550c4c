package storage

import (
	"context"
	"fmt"

	"github.com/jaki95/songinfo/config"
)

const (
	TypeNone   = "none"
	TypeLocal  = "local"
	TypeSQLite = "sqlite"
	TypeGCS    = "gcs"
)

// New builds the persistent store selected by cfg. A nil Store with a nil
// error means persistence is disabled.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "", TypeNone:
		return nil, nil
	case TypeLocal:
		store, err := NewLocalFileStorage(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case TypeSQLite:
		store, err := NewSQLiteStorage(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case TypeGCS:
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("gcs storage requires a bucket name")
		}
		store, err := NewGCSStorage(ctx, cfg.Bucket, cfg.ObjectPrefix, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
