package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/analytics"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/dashboard"
)

// AddTransaction records a transaction and raises the related notification:
// a warning for an expense at or above the large expense threshold, an info
// for income.
func (o *Orchestrator) AddTransaction(ctx context.Context, draft domain.TransactionDraft) (domain.Transaction, error) {
	if err := o.Subscription.Require(domain.FeatureTransactions); err != nil {
		return domain.Transaction{}, err
	}
	tx, err := o.Transactions.Create(ctx, draft)
	if err != nil && !domain.IsWarning(err) {
		return tx, err
	}
	var errs outcome
	errs.add(err)

	switch {
	case tx.Kind == domain.TransactionKindIncome:
		_, nerr := o.Notifications.NotifyIncome(ctx, tx)
		errs.add(nerr)
	case o.cfg.LargeExpenseThreshold.IsPositive() && tx.Amount.GreaterThanOrEqual(o.cfg.LargeExpenseThreshold):
		_, nerr := o.Notifications.NotifyLargeExpense(ctx, tx)
		errs.add(nerr)
	}
	return tx, errs.err()
}

// CreateGoal stores a goal. Without unlimited_goals at most
// domain.FreeGoalLimit goals may exist.
func (o *Orchestrator) CreateGoal(ctx context.Context, draft domain.GoalDraft) (domain.Goal, error) {
	if err := o.Subscription.Require(domain.FeatureGoals); err != nil {
		return domain.Goal{}, err
	}
	if !o.Subscription.HasFeature(domain.FeatureUnlimitedGoals) && o.Goals.Count() >= domain.FreeGoalLimit {
		return domain.Goal{}, fmt.Errorf("%w: %d of %d goals used", domain.ErrGoalLimit, o.Goals.Count(), domain.FreeGoalLimit)
	}
	return o.Goals.Create(ctx, draft)
}

// Contribute adds a contribution and celebrates the goal when it crosses its target.
func (o *Orchestrator) Contribute(ctx context.Context, goalID string, amount decimal.Decimal, date time.Time, note string) (domain.Goal, bool, error) {
	before, err := o.Goals.Get(goalID)
	if err != nil {
		return domain.Goal{}, false, nil
	}
	wasCompleted := analytics.Progress(before, o.clock.Now()).IsCompleted

	g, found, err := o.Goals.AddContribution(ctx, goalID, amount, date, note)
	if !found || (err != nil && !domain.IsWarning(err)) {
		return g, found, err
	}
	var errs outcome
	errs.add(err)
	if !wasCompleted && analytics.Progress(g, o.clock.Now()).IsCompleted {
		_, nerr := o.Notifications.NotifyGoalCompleted(ctx, g)
		errs.add(nerr)
	}
	return g, true, errs.err()
}

// ListHoldings returns the holdings when the plan includes the crypto portfolio.
func (o *Orchestrator) ListHoldings() ([]domain.CryptoHolding, error) {
	if err := o.Subscription.Require(domain.FeatureCryptoPortfolio); err != nil {
		return nil, err
	}
	return o.Holdings.List(), nil
}

// CreateHolding stores a holding when the plan includes the crypto portfolio.
func (o *Orchestrator) CreateHolding(ctx context.Context, draft domain.HoldingDraft) (domain.CryptoHolding, error) {
	if err := o.Subscription.Require(domain.FeatureCryptoPortfolio); err != nil {
		return domain.CryptoHolding{}, err
	}
	return o.Holdings.Create(ctx, draft)
}

// DeleteHolding removes a holding when the plan includes the crypto portfolio.
func (o *Orchestrator) DeleteHolding(ctx context.Context, id string) (bool, error) {
	if err := o.Subscription.Require(domain.FeatureCryptoPortfolio); err != nil {
		return false, err
	}
	return o.Holdings.Delete(ctx, id)
}

// Portfolio values the holdings when the plan includes the crypto portfolio.
func (o *Orchestrator) Portfolio(ctx context.Context) (analytics.PortfolioStats, error) {
	if err := o.Subscription.Require(domain.FeatureCryptoPortfolio); err != nil {
		return analytics.PortfolioStats{}, err
	}
	return o.Dashboard.Portfolio(ctx), nil
}

// Overview computes the dashboard for the active identity.
func (o *Orchestrator) Overview(ctx context.Context) (*dashboard.Overview, error) {
	if err := o.Subscription.Require(domain.FeatureDashboard); err != nil {
		return nil, err
	}
	return o.Dashboard.GetOverview(ctx)
}

// QuoteSymbols returns the symbols to price for the active identity, or nil
// when the plan lacks the crypto portfolio.
func (o *Orchestrator) QuoteSymbols() []string {
	if !o.Subscription.HasFeature(domain.FeatureCryptoPortfolio) {
		return nil
	}
	return o.Holdings.Symbols()
}

// FetchQuotes asks the market feed for symbols. It touches no store.
func (o *Orchestrator) FetchQuotes(ctx context.Context, symbols []string) map[string]domain.Quote {
	return o.Dashboard.Quotes(ctx, symbols)
}

// PortfolioWithQuotes is Portfolio against quotes fetched earlier.
func (o *Orchestrator) PortfolioWithQuotes(quotes map[string]domain.Quote) (analytics.PortfolioStats, error) {
	if err := o.Subscription.Require(domain.FeatureCryptoPortfolio); err != nil {
		return analytics.PortfolioStats{}, err
	}
	return o.Dashboard.Valuation(quotes), nil
}

// OverviewWithQuotes is Overview against quotes fetched earlier.
func (o *Orchestrator) OverviewWithQuotes(quotes map[string]domain.Quote) (*dashboard.Overview, error) {
	if err := o.Subscription.Require(domain.FeatureDashboard); err != nil {
		return nil, err
	}
	return o.Dashboard.Compose(quotes), nil
}

// ChangePlan switches plan and confirms it with a notification.
func (o *Orchestrator) ChangePlan(ctx context.Context, plan domain.Plan) (domain.Subscription, error) {
	sub, err := o.Subscription.ChangePlan(ctx, plan)
	if err != nil && !domain.IsWarning(err) {
		return sub, err
	}
	var errs outcome
	errs.add(err)
	_, nerr := o.Notifications.NotifyPlanChanged(ctx, plan, false)
	errs.add(nerr)
	return sub, errs.err()
}

// StartTrial starts a trial and confirms it with a notification.
func (o *Orchestrator) StartTrial(ctx context.Context, plan domain.Plan) (domain.Subscription, error) {
	sub, err := o.Subscription.StartTrial(ctx, plan)
	if err != nil && !domain.IsWarning(err) {
		return sub, err
	}
	var errs outcome
	errs.add(err)
	_, nerr := o.Notifications.NotifyPlanChanged(ctx, plan, true)
	errs.add(nerr)
	return sub, errs.err()
}

// MaintenanceReport summarizes a RunMaintenance pass
type MaintenanceReport struct {
	Pruned          int         `json:"pruned"`
	ExpiredPlan     domain.Plan `json:"expiredPlan,omitempty"`
	DeadlineWarning int         `json:"deadlineWarnings"`
	Unread          int         `json:"unread"`
}

// RunMaintenance prunes expired notifications, refreshes the subscription and
// warns once per session about goals whose deadline is near.
func (o *Orchestrator) RunMaintenance(ctx context.Context) (MaintenanceReport, error) {
	var r MaintenanceReport
	var errs outcome

	pruned, err := o.Notifications.Prune(ctx)
	r.Pruned = pruned
	errs.add(err)

	expired, err := o.Subscription.Refresh(ctx)
	errs.add(err)
	if expired != "" {
		r.ExpiredPlan = expired
		_, nerr := o.Notifications.NotifySubscriptionExpired(ctx, expired)
		errs.add(nerr)
	}

	goals := o.Goals.List()
	byID := make(map[string]domain.Goal, len(goals))
	for _, g := range goals {
		byID[g.ID] = g
	}
	for _, p := range analytics.DueSoon(goals, o.clock.Now(), dashboard.DeadlineWindow) {
		if o.deadlineWarned[p.GoalID] {
			continue
		}
		o.deadlineWarned[p.GoalID] = true
		_, nerr := o.Notifications.NotifyGoalDeadline(ctx, byID[p.GoalID], p.DaysLeft, p.Remaining)
		errs.add(nerr)
		r.DeadlineWarning++
	}

	r.Unread = o.Notifications.UnreadCount()
	o.log.Info().Int("pruned", r.Pruned).Str("expired_plan", string(r.ExpiredPlan)).
		Int("deadline_warnings", r.DeadlineWarning).Msg("Maintenance completed")
	return r, errs.err()
}
