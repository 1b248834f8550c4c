package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/songinfo/config"
	"github.com/jaki95/songinfo/internal/storage"
)

func TestNew(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Type = storage.TypeSQLite
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "songs.db")

	svc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer svc.Close()

	assert.NotNil(t, svc.Resolver)
	assert.NotNil(t, svc.Cache)
	assert.IsType(t, &storage.SQLiteStorage{}, svc.Store)
	assert.Nil(t, svc.Searcher)
}

func TestNew_WithoutPersistence(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Type = storage.TypeNone
	cfg.Spotify.ClientID = "id"
	cfg.Spotify.ClientSecret = "secret"

	svc, err := New(context.Background(), cfg)
	require.NoError(t, err)

	assert.Nil(t, svc.Store)
	assert.NotNil(t, svc.Searcher)
	assert.NoError(t, svc.Close())
}

func TestNew_InvalidStorage(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Type = "tape"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
