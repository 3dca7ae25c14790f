package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wealthflow.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestLoad_Absent(t *testing.T) {
	s, _ := openTemp(t)

	data, found, err := s.Load(context.Background(), domain.KeyGoals)

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	snapshot := []byte(`[{"id":"a","amount":"12.50"}]`)

	require.NoError(t, s.Save(ctx, domain.KeyTransactions, snapshot))
	data, found, err := s.Load(ctx, domain.KeyTransactions)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, snapshot, data)
}

func TestSave_Overwrites(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	require.NoError(t, s.Save(ctx, domain.KeyNotifications, []byte(`[1]`)))
	require.NoError(t, s.Save(ctx, domain.KeyNotifications, []byte(`[2]`)))
	require.NoError(t, s.Save(ctx, domain.KeyGoals, []byte(`[]`)))

	data, _, err := s.Load(ctx, domain.KeyNotifications)
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(data))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.KeyGoals, domain.KeyNotifications}, keys)
}

func TestReopen_KeepsDataAndSkipsMigrations(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	key := domain.UserScopedKey(domain.KeySubscription, "alice")
	require.NoError(t, s.Save(ctx, key, []byte(`{"currentPlan":"pro"}`)))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	data, found, err := reopened.Load(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"currentPlan":"pro"}`, string(data))
}
