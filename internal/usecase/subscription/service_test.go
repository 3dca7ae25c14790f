package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-dashboard/internal/adapter/repository/memory"
	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newService(store *memory.Store) (*SubscriptionService, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)}
	nop := logger.Nop()
	return NewSubscriptionService(store, clock.Now, &nop), clock
}

func TestAnonymousScopeIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc, _ := newService(store)

	sub, err := svc.Scope(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, sub.Plan)

	_, err = svc.ChangePlan(ctx, domain.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPro, svc.Plan())
	assert.Empty(t, store.Keys())

	// Re-entering the anonymous scope resets to the default.
	sub, err = svc.Scope(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, sub.Plan)
}

func TestScopeIsPerUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc, _ := newService(store)

	_, err := svc.Scope(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.ChangePlan(ctx, domain.PlanEnterprise)
	require.NoError(t, err)

	_, err = svc.Scope(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, svc.Plan())

	_, err = svc.Scope(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanEnterprise, svc.Plan())
	assert.True(t, svc.HasFeature(domain.FeatureTeamManagement))
	assert.Equal(t, []string{"subscription:alice"}, store.Keys())
}

func TestTrialLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, clock := newService(memory.NewStore())
	_, _ = svc.Scope(ctx, "alice")

	assert.ErrorIs(t, svc.Require(domain.FeatureCryptoPortfolio), domain.ErrFeatureLocked)

	sub, err := svc.StartTrial(ctx, domain.PlanPro)
	require.NoError(t, err)
	assert.True(t, sub.OnTrial(clock.now))
	assert.NoError(t, svc.Require(domain.FeatureCryptoPortfolio))

	_, err = svc.StartTrial(ctx, domain.PlanPro)
	assert.ErrorIs(t, err, domain.ErrValidation)

	clock.now = clock.now.Add(TrialLength - time.Minute)
	expired, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)

	clock.now = clock.now.Add(2 * time.Minute)
	assert.Equal(t, domain.PlanFree, svc.Plan(), "expired trial is not entitled even before refresh")

	expired, err = svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPro, expired)
	assert.Equal(t, domain.PlanFree, svc.Current().Plan)
	assert.NotNil(t, svc.Current().TrialStartedAt)

	_, err = svc.StartTrial(ctx, domain.PlanPro)
	assert.ErrorIs(t, err, domain.ErrValidation, "a trial is only granted once")
}

func TestPaidPeriodExpires(t *testing.T) {
	ctx := context.Background()
	svc, clock := newService(memory.NewStore())
	_, _ = svc.Scope(ctx, "alice")

	_, err := svc.ChangePlan(ctx, domain.PlanPro)
	require.NoError(t, err)
	assert.Contains(t, svc.Features(), domain.FeatureUnlimitedGoals)

	clock.now = clock.now.Add(BillingPeriod + time.Hour)
	expired, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPro, expired)
	assert.Equal(t, domain.PlanFeatures(domain.PlanFree), svc.Features())
}

func TestChangePlan_Validation(t *testing.T) {
	svc, _ := newService(memory.NewStore())

	_, err := svc.ChangePlan(context.Background(), "platinum")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.PlanFree, svc.Plan())
}

func TestMalformedSnapshotFallsBackToFree(t *testing.T) {
	store := memory.NewStore()
	store.Put("subscription:alice", []byte(`{"currentPlan":"gold"}`))
	svc, _ := newService(store)

	sub, err := svc.Scope(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, sub.Plan)
}

func TestUnreadableSnapshotIsNeverOverwritten(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc, _ := newService(store)

	_, err := svc.Scope(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.StartTrial(ctx, domain.PlanPro)
	require.NoError(t, err)
	_, err = svc.Scope(ctx, "bob")
	require.NoError(t, err)

	store.FailLoads(true)
	sub, err := svc.Scope(ctx, "alice")
	require.Error(t, err)
	assert.Equal(t, domain.PlanFree, sub.Plan)

	sub, err = svc.StartTrial(ctx, domain.PlanEnterprise)
	assert.ErrorIs(t, err, domain.ErrUnreadable)
	assert.Equal(t, domain.PlanFree, sub.Plan)

	_, err = svc.ChangePlan(ctx, domain.PlanEnterprise)
	assert.ErrorIs(t, err, domain.ErrUnreadable)

	store.FailLoads(false)
	reader, _ := newService(store)
	stored, err := reader.Scope(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPro, stored.Plan)
	assert.NotNil(t, stored.TrialStartedAt)
}

func TestReadFailureOnSameUserKeepsTrialUsed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc, _ := newService(store)
	_, _ = svc.Scope(ctx, "alice")
	_, err := svc.StartTrial(ctx, domain.PlanPro)
	require.NoError(t, err)

	store.FailLoads(true)
	_, err = svc.Scope(ctx, "alice")
	require.Error(t, err)
	assert.Equal(t, domain.PlanPro, svc.Plan())

	_, err = svc.StartTrial(ctx, domain.PlanEnterprise)
	assert.Error(t, err)
	assert.Equal(t, domain.PlanPro, svc.Plan())
}
