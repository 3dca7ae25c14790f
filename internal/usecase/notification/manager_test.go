package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-dashboard/internal/adapter/repository/memory"
	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newManager(t *testing.T, store *memory.Store) (*Manager, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)}
	nop := logger.Nop()
	m := NewManager(store, clock.Now, Config{}, &nop)
	require.NoError(t, m.Load(context.Background()))
	return m, clock
}

func info(title string) domain.NotificationDraft {
	return domain.NotificationDraft{
		Type:     domain.NotificationInfo,
		Category: domain.NotificationCategorySystem,
		Title:    title,
		Message:  "body",
	}
}

func TestLoad_NoSeed(t *testing.T) {
	m, _ := newManager(t, memory.NewStore())

	assert.Zero(t, m.Len())
	assert.Zero(t, m.UnreadCount())
}

func TestCreate_PrependsUnread(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, memory.NewStore())

	first, err := m.Create(ctx, info("first"))
	require.NoError(t, err)
	second, err := m.Create(ctx, info("second"))
	require.NoError(t, err)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.False(t, first.IsRead)
	assert.Equal(t, 2, m.UnreadCount())
}

func TestCreate_SanitizesText(t *testing.T) {
	m, _ := newManager(t, memory.NewStore())

	n, err := m.Create(context.Background(), domain.NotificationDraft{
		Type:     domain.NotificationInfo,
		Category: domain.NotificationCategorySystem,
		Title:    `<b>Hello</b> & "welcome"`,
		Message:  `<script>alert(1)</script>You've got mail`,
	})

	require.NoError(t, err)
	assert.Equal(t, `Hello & "welcome"`, n.Title)
	assert.Equal(t, "You've got mail", n.Message)
}

func TestCreate_RejectsInvalid(t *testing.T) {
	m, _ := newManager(t, memory.NewStore())

	_, err := m.Create(context.Background(), domain.NotificationDraft{Type: "fatal", Category: domain.NotificationCategorySystem, Title: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = m.Create(context.Background(), info("<i></i>"))
	assert.ErrorIs(t, err, domain.ErrValidation, "a title that is only markup is empty")

	assert.Zero(t, m.UnreadCount())
}

func TestMarkAsRead_OneWay(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m, _ := newManager(t, store)
	n, _ := m.Create(ctx, info("a"))

	changed, err := m.MarkAsRead(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	saves := store.Saves()
	changed, err = m.MarkAsRead(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, saves, store.Saves())

	changed, err = m.MarkAsRead(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, m.UnreadCount())
}

func TestMarkAllAsRead_SingleWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m, _ := newManager(t, store)
	for i := range 4 {
		_, _ = m.Create(ctx, info(fmt.Sprint(i)))
	}
	saves := store.Saves()

	n, err := m.MarkAllAsRead(ctx)

	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, saves+1, store.Saves())
	assert.Zero(t, m.UnreadCount())
	assert.Zero(t, m.Recount())
}

func TestPrune_TTL(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)
	old := domain.Notification{ID: "old", Type: domain.NotificationInfo, Category: domain.NotificationCategorySystem, Title: "old", CreatedAt: now.Add(-8 * 24 * time.Hour)}
	recent := domain.Notification{ID: "recent", Type: domain.NotificationInfo, Category: domain.NotificationCategorySystem, Title: "recent", CreatedAt: now.Add(-6 * 24 * time.Hour)}
	data, err := json.Marshal([]domain.Notification{recent, old})
	require.NoError(t, err)
	store.Put(domain.KeyNotifications, data)

	m, _ := newManager(t, store)

	list := m.List()
	require.Len(t, list, 1)
	assert.Equal(t, "recent", list[0].ID)
	assert.Equal(t, 1, m.UnreadCount())
	assert.Equal(t, m.Recount(), m.UnreadCount())
}

func TestPrune_AfterTimePasses(t *testing.T) {
	ctx := context.Background()
	m, clock := newManager(t, memory.NewStore())
	_, _ = m.Create(ctx, info("a"))
	read, _ := m.Create(ctx, info("b"))
	_, _ = m.MarkAsRead(ctx, read.ID)

	clock.now = clock.now.Add(DefaultTTL - time.Second)
	n, err := m.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	clock.now = clock.now.Add(2 * time.Second)
	n, err = m.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Zero(t, m.UnreadCount())
}

func TestUnreadCountMatchesRecount(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m, clock := newManager(t, store)
	rng := rand.New(rand.NewSource(7))

	for step := range 300 {
		ids := m.List()
		switch op := rng.Intn(7); {
		case op <= 1:
			_, err := m.Create(ctx, info(fmt.Sprint(step)))
			require.NoError(t, err)
		case op == 2 && len(ids) > 0:
			_, err := m.MarkAsRead(ctx, ids[rng.Intn(len(ids))].ID)
			require.NoError(t, err)
		case op == 3 && len(ids) > 0:
			_, err := m.Remove(ctx, ids[rng.Intn(len(ids))].ID)
			require.NoError(t, err)
		case op == 4:
			clock.now = clock.now.Add(time.Duration(rng.Intn(48)) * time.Hour)
			_, err := m.Prune(ctx)
			require.NoError(t, err)
		case op == 5 && rng.Intn(10) == 0:
			_, err := m.MarkAllAsRead(ctx)
			require.NoError(t, err)
		case op == 6 && rng.Intn(20) == 0:
			store.FailSaves(rng.Intn(2) == 0)
			_, _ = m.Create(ctx, info("maybe unsaved"))
			store.FailSaves(false)
		}
		require.Equal(t, m.Recount(), m.UnreadCount(), "step %d", step)
	}
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, memory.NewStore())
	a, _ := m.Create(ctx, info("a"))
	_, _ = m.Create(ctx, info("b"))

	found, err := m.Remove(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, found)
	found, err = m.Remove(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, m.UnreadCount())

	n, err := m.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, m.Len())
	assert.Zero(t, m.UnreadCount())
}

func TestSaveFailureKeepsNotification(t *testing.T) {
	store := memory.NewStore()
	m, _ := newManager(t, store)
	store.FailSaves(true)

	n, err := m.Create(context.Background(), info("kept"))

	assert.True(t, domain.IsWarning(err))
	assert.Equal(t, 1, m.UnreadCount())
	assert.Equal(t, n.ID, m.List()[0].ID)
}

func TestInjectTemplates(t *testing.T) {
	m, _ := newManager(t, memory.NewStore())

	n, err := m.InjectTemplates(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "Welcome to WealthFlow", m.List()[0].Title)
	assert.Equal(t, 3, m.UnreadCount())
}

func TestTriggers(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, memory.NewStore())

	n, err := m.NotifyLargeExpense(ctx, domain.Transaction{Amount: decimal.RequireFromString("1250.5"), Category: domain.CategoryShopping})
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationWarning, n.Type)
	assert.Equal(t, "$1,250.50 spent on shopping.", n.Message)

	n, err = m.NotifyIncome(ctx, domain.Transaction{Amount: decimal.NewFromInt(3000), Description: "Salary"})
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationInfo, n.Type)
	assert.Contains(t, n.Message, "$3,000.00")

	n, err = m.NotifyGoalCompleted(ctx, domain.Goal{Title: "Bike", TargetAmount: decimal.NewFromInt(800)})
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationSuccess, n.Type)
	assert.Equal(t, `You saved $800.00 for "Bike".`, n.Message)

	n, err = m.NotifyPlanChanged(ctx, domain.PlanPro, true)
	require.NoError(t, err)
	assert.Equal(t, "Pro trial started", n.Title)

	n, err = m.NotifySubscriptionExpired(ctx, domain.PlanEnterprise)
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationCategorySubscription, n.Category)
	assert.Equal(t, "Enterprise access ended", n.Title)

	assert.Equal(t, 5, m.UnreadCount())
}
