// Package orchestrator coordinates the entity stores: session start, identity
// changes, entitlement gating and the notifications raised by other entities.
// Entity stores never call each other; every cross-entity signal goes through here.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/dashboard"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/entitystore"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/goal"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/holding"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/notification"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/preference"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/subscription"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/transaction"
)

// Scheduler runs task after delay. The task may run on another goroutine; the
// caller installing the scheduler is responsible for serializing it with the
// other store operations.
type Scheduler func(delay time.Duration, task func())

// Immediate runs the task synchronously, ignoring the delay.
func Immediate(_ time.Duration, task func()) { task() }

// Config tunes the orchestrator
type Config struct {
	LargeExpenseThreshold decimal.Decimal
	NotificationTTL       time.Duration
	SeedDelay             time.Duration
	Currency              string
}

// Orchestrator owns every entity store of the process
type Orchestrator struct {
	Transactions  *transaction.TransactionService
	Goals         *goal.GoalService
	Holdings      *holding.HoldingService
	Subscription  *subscription.SubscriptionService
	Notifications *notification.Manager
	Preferences   *preference.PreferenceService
	Dashboard     *dashboard.DashboardService

	cfg      Config
	clock    domain.Clock
	log      *zerolog.Logger
	schedule Scheduler

	identity string
	// welcome template seeding per identity, kept for the process lifetime
	seeded map[string]entitystore.SeedState
	// goals already warned about an approaching deadline this session
	deadlineWarned map[string]bool
}

// New wires the entity stores on top of store. feed may be nil.
func New(store domain.RecordStore, feed domain.MarketFeed, cfg Config, clock domain.Clock, schedule Scheduler, log *zerolog.Logger) *Orchestrator {
	if log == nil {
		log = &logger.L
	}
	if schedule == nil {
		schedule = Immediate
	}
	o := &Orchestrator{
		Transactions: transaction.NewTransactionService(store, clock, log),
		Goals:        goal.NewGoalService(store, clock, log),
		Holdings:     holding.NewHoldingService(store, clock, log),
		Subscription: subscription.NewSubscriptionService(store, clock, log),
		Notifications: notification.NewManager(store, clock, notification.Config{
			TTL:      cfg.NotificationTTL,
			Currency: cfg.Currency,
		}, log),
		Preferences:    preference.NewPreferenceService(store, log),
		cfg:            cfg,
		clock:          clock,
		log:            log,
		schedule:       schedule,
		seeded:         make(map[string]entitystore.SeedState),
		deadlineWarned: make(map[string]bool),
	}
	o.Dashboard = dashboard.NewDashboardService(o.Transactions, o.Goals, o.Holdings, o.Subscription, o.Notifications, feed, clock)
	return o
}

// Identity returns the active identity ("" when anonymous).
func (o *Orchestrator) Identity() string { return o.identity }

// Now returns the orchestrator clock reading.
func (o *Orchestrator) Now() time.Time { return o.clock.Now() }

// StartSession loads every store, then applies identity.
// A store that cannot be read is reported but does not stop the others from loading.
func (o *Orchestrator) StartSession(ctx context.Context, identity string) error {
	var errs outcome
	errs.add(o.Preferences.Load(ctx))
	errs.add(o.Transactions.Initialize(ctx))
	errs.add(o.Goals.Initialize(ctx))
	errs.add(o.Holdings.Initialize(ctx))
	errs.add(o.Notifications.Load(ctx))
	errs.add(o.ChangeIdentity(ctx, identity))

	o.log.Info().
		Str("user_id", identity).
		Int("transactions", len(o.Transactions.List())).
		Int("goals", o.Goals.Count()).
		Int("notifications", o.Notifications.Len()).
		Msg("Session started")
	return errs.err()
}

// ChangeIdentity re-scopes the per-user state to identity ("" for none).
// Logic:
//  1. Prune expired notifications
//  2. Re-scope the subscription (anonymous default when identity is empty)
//  3. Downgrade an expired trial or paid period, with a warning notification
//  4. On the first appearance of identity this session, if there are no
//     notifications, schedule the one-time welcome template injection
func (o *Orchestrator) ChangeIdentity(ctx context.Context, identity string) error {
	previous := o.identity
	o.identity = identity
	var errs outcome

	_, err := o.Notifications.Prune(ctx)
	errs.add(err)

	_, err = o.Subscription.Scope(ctx, identity)
	errs.add(err)
	errs.add(o.refreshSubscription(ctx))

	if identity != "" && identity != previous && o.seeded[identity] == entitystore.SeedPending {
		if o.Notifications.Len() > 0 {
			o.seeded[identity] = entitystore.SeedHasData
		} else {
			o.schedule(o.cfg.SeedDelay, func() { o.injectWelcome(identity) })
		}
	}

	if previous != identity {
		o.log.Info().Str("from", previous).Str("to", identity).Msg("Identity changed")
	}
	return errs.err()
}

// injectWelcome is the deferred seeding task. It does nothing unless identity
// is still active, still unseeded, and the notification list is still empty.
func (o *Orchestrator) injectWelcome(identity string) {
	if o.identity != identity || o.seeded[identity] != entitystore.SeedPending || o.Notifications.Len() > 0 {
		return
	}
	o.seeded[identity] = entitystore.SeededThisSession
	if _, err := o.Notifications.InjectTemplates(context.Background()); err != nil {
		o.log.Warn().Err(err).Str("user_id", identity).Msg("Welcome notifications not fully saved")
	}
}

// SeedState returns the welcome seeding state of identity this session.
func (o *Orchestrator) SeedState(identity string) entitystore.SeedState { return o.seeded[identity] }

func (o *Orchestrator) refreshSubscription(ctx context.Context) error {
	expired, err := o.Subscription.Refresh(ctx)
	if expired == "" {
		return err
	}
	var errs outcome
	errs.add(err)
	_, nerr := o.Notifications.NotifySubscriptionExpired(ctx, expired)
	errs.add(nerr)
	return errs.err()
}

// outcome separates hard failures from persistence warnings so a joined
// error is only a warning when every part is one.
type outcome struct {
	hard, warn []error
}

func (e *outcome) add(err error) {
	switch {
	case err == nil:
	case domain.IsWarning(err) && !errors.Is(err, domain.ErrValidation):
		e.warn = append(e.warn, err)
	default:
		e.hard = append(e.hard, err)
	}
}

func (e *outcome) err() error {
	if len(e.hard) > 0 {
		return errors.Join(e.hard...)
	}
	return errors.Join(e.warn...)
}
