package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-dashboard/internal/adapter/repository/memory"
	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/entitystore"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/seeder"
)

var now = time.Date(2026, 6, 10, 8, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*TransactionService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	nop := logger.Nop()
	svc := NewTransactionService(store, func() time.Time { return now }, &nop)
	require.NoError(t, svc.Initialize(context.Background()))
	return svc, store
}

func TestInitialize_InstallsDemoSet(t *testing.T) {
	svc, store := newService(t)

	assert.Len(t, svc.List(), len(seeder.Transactions(now)))
	assert.Equal(t, entitystore.SeededThisSession, svc.SeedState())
	assert.Equal(t, 1, store.Saves())
}

func TestCreate_ThenGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	date := now.Add(-48 * time.Hour)

	draft := domain.TransactionDraft{
		Kind:        domain.TransactionKindExpense,
		Category:    domain.CategoryEntertainment,
		Amount:      decimal.RequireFromString("42.50"),
		Description: "  Concert  ",
		Date:        date,
	}

	created, err := svc.Create(ctx, draft)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, now, created.CreatedAt)

	got, err := svc.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "Concert", got.Description)
	assert.True(t, draft.Amount.Equal(got.Amount))
	assert.Equal(t, date, got.Date)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name  string
		draft domain.TransactionDraft
	}{
		{
			name:  "Negative amount",
			draft: domain.TransactionDraft{Kind: domain.TransactionKindIncome, Category: domain.CategorySalary, Amount: decimal.NewFromInt(-1)},
		},
		{
			name:  "Unknown kind",
			draft: domain.TransactionDraft{Kind: "transfer", Category: domain.CategorySalary, Amount: decimal.NewFromInt(1)},
		},
		{
			name:  "Unknown category",
			draft: domain.TransactionDraft{Kind: domain.TransactionKindExpense, Category: "crypto", Amount: decimal.NewFromInt(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newService(t)
			before := svc.List()

			_, err := svc.Create(context.Background(), tt.draft)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, before, svc.List())
			assert.Equal(t, 1, store.Saves())
		})
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	id := seeder.TX_RENT.String()
	original, err := svc.Get(id)
	require.NoError(t, err)

	t.Run("Empty patch returns the original", func(t *testing.T) {
		got, found, err := svc.Update(ctx, id, domain.TransactionPatch{})
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, original, got)
		assert.Equal(t, 1, store.Saves())
	})

	t.Run("Unknown id is a no-op", func(t *testing.T) {
		amount := decimal.NewFromInt(1)
		_, found, err := svc.Update(ctx, "missing", domain.TransactionPatch{Amount: &amount})
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, 1, store.Saves())
	})

	t.Run("Merges fields", func(t *testing.T) {
		amount := decimal.NewFromInt(1600)
		got, found, err := svc.Update(ctx, id, domain.TransactionPatch{Amount: &amount})
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, amount.Equal(got.Amount))
		assert.Equal(t, original.Description, got.Description)
	})

	t.Run("Invalid patch is rejected", func(t *testing.T) {
		cat := domain.TransactionCategory("lottery")
		_, _, err := svc.Update(ctx, id, domain.TransactionPatch{Category: &cat})
		assert.ErrorIs(t, err, domain.ErrValidation)
		got, _ := svc.Get(id)
		assert.Equal(t, domain.CategoryHousing, got.Category)
	})
}

func TestDelete_Twice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	id := seeder.TX_SALARY.String()

	found, err := svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = svc.Get(id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, svc.List(), 4)
}

func TestSelectors(t *testing.T) {
	svc, _ := newService(t)

	assert.Len(t, svc.ByKind(domain.TransactionKindIncome), 2)
	assert.Len(t, svc.ByKind(domain.TransactionKindExpense), 3)
	assert.Len(t, svc.ByCategory(domain.CategoryFood), 1)
	assert.Len(t, svc.Between(now.Add(-8*24*time.Hour), now), 3)

	recent := svc.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, seeder.TX_TRANSPORT.String(), recent[0].ID)
	assert.Equal(t, seeder.TX_FREELANCE.String(), recent[1].ID)
	assert.Len(t, svc.Recent(100), 5)
}

func TestCreate_SaveFailureKeepsRecord(t *testing.T) {
	svc, store := newService(t)
	store.FailSaves(true)

	created, err := svc.Create(context.Background(), domain.TransactionDraft{
		Kind:     domain.TransactionKindIncome,
		Category: domain.CategoryGift,
		Amount:   decimal.NewFromInt(50),
	})

	assert.True(t, domain.IsWarning(err))
	_, getErr := svc.Get(created.ID)
	assert.NoError(t, getErr)
}
