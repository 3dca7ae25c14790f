package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-dashboard/internal/adapter/repository/memory"
	"github.com/simaogato/wealthflow-dashboard/internal/adapter/repository/sqlite"
	"github.com/simaogato/wealthflow-dashboard/internal/config"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, closer, err := Open(ctx, &config.AppConfig{StorageDriver: config.StorageMemory})
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, store)
		assert.NoError(t, closer.Close())
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.AppConfig{
			StorageDriver: config.StorageSQLite,
			DatabasePath:  filepath.Join(t.TempDir(), "open.db"),
		}
		store, closer, err := Open(ctx, cfg)
		require.NoError(t, err)
		assert.IsType(t, &sqlite.Store{}, store)

		require.NoError(t, store.Save(ctx, "goals", []byte(`[]`)))
		assert.NoError(t, closer.Close())
	})
}
