package entitystore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-dashboard/internal/adapter/repository/memory"
	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
)

// note is a minimal record used to exercise the store
type note struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Words int    `json:"words"`
}

func (n note) GetID() string { return n.ID }

func (n note) Validate() error {
	if n.ID == "" {
		return domain.ErrValidation
	}
	if n.Text == "" {
		return domain.ErrValidation
	}
	return nil
}

func countWords(n note) note {
	n.Words = len(n.Text)
	return n
}

// MockRecordStore is a mock implementation of domain.RecordStore for testing
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1), args.Error(2)
}

func (m *MockRecordStore) Save(ctx context.Context, key string, snapshot []byte) error {
	args := m.Called(ctx, key, snapshot)
	return args.Error(0)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedNotes(time.Time) []note {
	return []note{{ID: "s1", Text: "seeded"}, {ID: "s2", Text: "second"}}
}

func newNotes(store domain.RecordStore, order Order) *Collection[note] {
	nop := logger.Nop()
	return New(store, "notes", Options[note]{
		Seed:      seedNotes,
		Normalize: countWords,
		Order:     order,
		Clock:     func() time.Time { return fixedNow },
		Logger:    &nop,
	})
}

func stored(t *testing.T, store *memory.Store, key string) []note {
	t.Helper()
	data, found, err := store.Load(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found)
	var out []note
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestInitialize_SeedsEmptyStoreOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := newNotes(store, Append)

	seeded, err := c.Initialize(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.Equal(t, SeededThisSession, c.SeedState())
	assert.Len(t, stored(t, store, "notes"), 2)
	assert.Equal(t, 6, c.All()[0].Words, "seed records are normalized")

	// Deleting everything and reloading in the same session must not re-seed.
	_, err = c.DeleteWhere(ctx, func(note) bool { return true })
	require.NoError(t, err)

	seeded, err = c.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Equal(t, 0, c.Len())
}

func TestInitialize_LoadsExistingData(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.Put("notes", []byte(`[{"id":"a","text":"hello"}]`))
	c := newNotes(store, Append)

	seeded, err := c.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Equal(t, SeedHasData, c.SeedState())
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 5, c.All()[0].Words)
	assert.Equal(t, 0, store.Saves(), "loading existing data writes nothing")
}

func TestInitialize_MalformedSnapshotIsTreatedAsAbsent(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Not JSON", `{broken`},
		{"Wrong shape", `{"id":"a"}`},
		{"Invalid record", `[{"id":"a","text":""}]`},
		{"Duplicate ids", `[{"id":"a","text":"x"},{"id":"a","text":"y"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			store.Put("notes", []byte(tt.data))
			c := newNotes(store, Append)

			seeded, err := c.Initialize(context.Background())
			require.NoError(t, err)
			assert.True(t, seeded)
			assert.Len(t, stored(t, store, "notes"), 2)
		})
	}
}

func TestInitialize_LoadErrorNeverSeeds(t *testing.T) {
	ctx := context.Background()
	store := new(MockRecordStore)
	store.On("Load", ctx, "notes").Return(nil, false, errors.New("disk unavailable"))
	c := newNotes(store, Append)

	seeded, err := c.Initialize(ctx)

	assert.Error(t, err)
	assert.False(t, seeded)
	assert.Equal(t, SeedPending, c.SeedState())
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestInsert_Order(t *testing.T) {
	ctx := context.Background()

	appendC := newNotes(memory.NewStore(), Append)
	_, _ = appendC.Initialize(ctx)
	_, err := appendC.Insert(ctx, note{ID: "n", Text: "new"})
	require.NoError(t, err)
	assert.Equal(t, "n", appendC.All()[2].ID)

	prependC := newNotes(memory.NewStore(), Prepend)
	_, _ = prependC.Initialize(ctx)
	_, err = prependC.Insert(ctx, note{ID: "n", Text: "new"})
	require.NoError(t, err)
	assert.Equal(t, "n", prependC.All()[0].ID)
}

func TestInsert_RejectsInvalidAndDuplicate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := newNotes(store, Append)
	_, _ = c.Initialize(ctx)
	saves := store.Saves()

	_, err := c.Insert(ctx, note{ID: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = c.Insert(ctx, note{ID: "s1", Text: "again"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, saves, store.Saves())
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := newNotes(store, Append)
	_, _ = c.Initialize(ctx)

	t.Run("Missing id is a no-op", func(t *testing.T) {
		saves := store.Saves()
		_, found, err := c.Update(ctx, "nope", func(n note) note { n.Text = "z"; return n })
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, saves, store.Saves())
	})

	t.Run("Merges and renormalizes", func(t *testing.T) {
		updated, found, err := c.Update(ctx, "s1", func(n note) note { n.Text = "rewritten"; return n })
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 9, updated.Words)
		assert.Equal(t, "rewritten", stored(t, store, "notes")[0].Text)
	})

	t.Run("Invalid result keeps the original", func(t *testing.T) {
		_, found, err := c.Update(ctx, "s1", func(n note) note { n.Text = ""; return n })
		assert.True(t, found)
		assert.ErrorIs(t, err, domain.ErrValidation)
		got, _ := c.Get("s1")
		assert.Equal(t, "rewritten", got.Text)
	})

	t.Run("Id cannot change", func(t *testing.T) {
		_, _, err := c.Update(ctx, "s1", func(n note) note { n.ID = "other"; return n })
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, ok := c.Get("other")
		assert.False(t, ok)
	})
}

func TestUpdateWhere(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := newNotes(store, Append)
	_, _ = c.Initialize(ctx)
	saves := store.Saves()

	n, err := c.UpdateWhere(ctx, func(note) bool { return true }, func(x note) note { x.Text += "!"; return x })
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, saves+1, store.Saves(), "a bulk update persists once")

	n, err = c.UpdateWhere(ctx, func(note) bool { return false }, func(x note) note { return x })
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, saves+1, store.Saves())
}

func TestDelete_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := newNotes(store, Append)
	_, _ = c.Initialize(ctx)

	removed, found, err := c.Delete(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "s1", removed.ID)

	_, found, err = c.Delete(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, c.Len())
	assert.Len(t, stored(t, store, "notes"), 1)
}

func TestSaveFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := newNotes(store, Append)
	_, _ = c.Initialize(ctx)
	store.FailSaves(true)

	_, err := c.Insert(ctx, note{ID: "n", Text: "kept"})

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.True(t, domain.IsWarning(err))
	_, ok := c.Get("n")
	assert.True(t, ok)
	assert.Len(t, stored(t, store, "notes"), 2, "durable copy is unchanged")
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	first := newNotes(store, Append)
	_, _ = first.Initialize(ctx)
	_, err := first.Insert(ctx, note{ID: "n", Text: "persisted"})
	require.NoError(t, err)

	second := newNotes(store, Append)
	seeded, err := second.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Equal(t, first.All(), second.All())
}

func TestAllReturnsCopy(t *testing.T) {
	c := newNotes(memory.NewStore(), Append)
	_, _ = c.Initialize(context.Background())

	all := c.All()
	all[0].Text = "mutated"

	got, _ := c.Get("s1")
	assert.Equal(t, "seeded", got.Text)
}
