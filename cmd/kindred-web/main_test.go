package main

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindredgraph/kindred/internal/config"
)

func TestOpenStore_SQLiteDefault(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{
			StorageEngine: "sqlite",
			DataPath:      t.TempDir() + "/data",
		},
	}

	store, err := openStore(cfg)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// The data directory is created and the store is usable.
	_, err = os.Stat(cfg.Storage.DataPath)
	assert.NoError(t, err, "data directory should be created")

	persons, err := store.ListAllPersons(context.Background())
	require.NoError(t, err)
	assert.Empty(t, persons)
}
