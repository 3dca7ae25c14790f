package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/pkg/currency"
)

func (m *Manager) money(amount decimal.Decimal) string {
	return currency.Format(amount, m.currency)
}

func describe(tx domain.Transaction) string {
	if tx.Description != "" {
		return tx.Description
	}
	return string(tx.Category)
}

// NotifyLargeExpense warns about an expense above the configured threshold.
func (m *Manager) NotifyLargeExpense(ctx context.Context, tx domain.Transaction) (domain.Notification, error) {
	return m.Create(ctx, domain.NotificationDraft{
		Type:     domain.NotificationWarning,
		Category: domain.NotificationCategoryTransaction,
		Title:    "Large expense recorded",
		Message:  fmt.Sprintf("%s spent on %s.", m.money(tx.Amount), describe(tx)),
		Link:     "/transactions",
		Icon:     "alert-triangle",
	})
}

// NotifyIncome reports received income.
func (m *Manager) NotifyIncome(ctx context.Context, tx domain.Transaction) (domain.Notification, error) {
	return m.Create(ctx, domain.NotificationDraft{
		Type:     domain.NotificationInfo,
		Category: domain.NotificationCategoryTransaction,
		Title:    "Income received",
		Message:  fmt.Sprintf("%s received from %s.", m.money(tx.Amount), describe(tx)),
		Link:     "/transactions",
		Icon:     "trending-up",
	})
}

// NotifyGoalCompleted celebrates a goal reaching its target.
func (m *Manager) NotifyGoalCompleted(ctx context.Context, g domain.Goal) (domain.Notification, error) {
	return m.Create(ctx, domain.NotificationDraft{
		Type:     domain.NotificationSuccess,
		Category: domain.NotificationCategoryGoal,
		Title:    "Goal reached",
		Message:  fmt.Sprintf("You saved %s for %q.", m.money(g.TargetAmount), g.Title),
		Link:     "/goals",
		Icon:     "trophy",
	})
}

// NotifyGoalDeadline warns that a goal is due soon and not yet funded.
func (m *Manager) NotifyGoalDeadline(ctx context.Context, g domain.Goal, daysLeft int, remaining decimal.Decimal) (domain.Notification, error) {
	return m.Create(ctx, domain.NotificationDraft{
		Type:     domain.NotificationWarning,
		Category: domain.NotificationCategoryGoal,
		Title:    "Goal deadline approaching",
		Message:  fmt.Sprintf("%q is due in %d day(s) with %s left to save.", g.Title, daysLeft, m.money(remaining)),
		Link:     "/goals",
		Icon:     "clock",
	})
}

// NotifyPlanChanged confirms a plan change or a started trial.
func (m *Manager) NotifyPlanChanged(ctx context.Context, plan domain.Plan, trial bool) (domain.Notification, error) {
	title := fmt.Sprintf("Welcome to %s", planName(plan))
	msg := fmt.Sprintf("Your plan is now %s.", planName(plan))
	if trial {
		title = fmt.Sprintf("%s trial started", planName(plan))
		msg = "Enjoy every feature of the plan during your trial."
	}
	return m.Create(ctx, domain.NotificationDraft{
		Type:     domain.NotificationSuccess,
		Category: domain.NotificationCategorySubscription,
		Title:    title,
		Message:  msg,
		Link:     "/subscription",
		Icon:     "crown",
	})
}

// NotifySubscriptionExpired warns that a trial or paid period ended.
func (m *Manager) NotifySubscriptionExpired(ctx context.Context, plan domain.Plan) (domain.Notification, error) {
	return m.Create(ctx, domain.NotificationDraft{
		Type:     domain.NotificationWarning,
		Category: domain.NotificationCategorySubscription,
		Title:    fmt.Sprintf("%s access ended", planName(plan)),
		Message:  "Your account is back on the Free plan. Upgrade to keep premium features.",
		Link:     "/subscription",
		Icon:     "alert-circle",
	})
}

func planName(p domain.Plan) string {
	s := string(p)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
