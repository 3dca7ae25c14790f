// Package analytics computes read-only figures from entity snapshots.
// Every function is pure: nothing here is cached or persisted, and "now" is
// always passed in.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// GoalProgress represents the derived state of a goal at a point in time
type GoalProgress struct {
	GoalID             string          `json:"goalId"`
	Percentage         decimal.Decimal `json:"percentage"`
	Remaining          decimal.Decimal `json:"remaining"`
	DaysLeft           int             `json:"daysLeft"`
	DailySavingsNeeded decimal.Decimal `json:"dailySavingsNeeded"`
	IsCompleted        bool            `json:"isCompleted"`
	IsOverdue          bool            `json:"isOverdue"`
}

// Progress computes the progress of g at now.
// TargetAmount is positive for every stored goal, so the ratio is always defined.
func Progress(g domain.Goal, now time.Time) GoalProgress {
	current := g.CurrentAmount
	target := g.TargetAmount

	pct := decimal.Zero
	if target.IsPositive() {
		pct = clamp(current.Div(target).Mul(hundred), decimal.Zero, hundred)
	}

	remaining := decimal.Max(target.Sub(current), decimal.Zero)
	daysLeft := DaysUntil(g.Deadline, now)

	daily := remaining
	if daysLeft > 0 {
		daily = remaining.Div(decimal.NewFromInt(int64(daysLeft)))
	}

	completed := current.GreaterThanOrEqual(target)
	return GoalProgress{
		GoalID:             g.ID,
		Percentage:         pct,
		Remaining:          remaining,
		DaysLeft:           daysLeft,
		DailySavingsNeeded: daily,
		IsCompleted:        completed,
		IsOverdue:          !completed && g.Deadline.Before(now),
	}
}

// DaysUntil returns max(ceil((deadline - now) / 24h), 0), counted in wall-clock days.
func DaysUntil(deadline, now time.Time) int {
	d := deadline.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// GoalsSummary aggregates all goals
type GoalsSummary struct {
	Count           int             `json:"count"`
	Completed       int             `json:"completed"`
	Overdue         int             `json:"overdue"`
	TotalTarget     decimal.Decimal `json:"totalTarget"`
	TotalSaved      decimal.Decimal `json:"totalSaved"`
	OverallProgress decimal.Decimal `json:"overallProgress"`
	Goals           []GoalProgress  `json:"goals"`
}

// SummarizeGoals computes the progress of every goal and their totals.
func SummarizeGoals(goals []domain.Goal, now time.Time) GoalsSummary {
	s := GoalsSummary{
		Count:       len(goals),
		TotalTarget: decimal.Zero,
		TotalSaved:  decimal.Zero,
		Goals:       make([]GoalProgress, 0, len(goals)),
	}
	for _, g := range goals {
		p := Progress(g, now)
		s.Goals = append(s.Goals, p)
		s.TotalTarget = s.TotalTarget.Add(g.TargetAmount)
		s.TotalSaved = s.TotalSaved.Add(g.CurrentAmount)
		if p.IsCompleted {
			s.Completed++
		}
		if p.IsOverdue {
			s.Overdue++
		}
	}
	s.OverallProgress = percentOf(s.TotalSaved, s.TotalTarget)
	if s.OverallProgress.GreaterThan(hundred) {
		s.OverallProgress = hundred
	}
	return s
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Min(decimal.Max(v, lo), hi)
}

// percentOf returns part/total*100, or zero when total is zero.
func percentOf(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred)
}

// DueSoon returns the progress of the goals that are not completed and whose
// deadline falls within the next `within`, soonest first. Overdue goals are excluded.
func DueSoon(goals []domain.Goal, now time.Time, within time.Duration) []GoalProgress {
	type due struct {
		p        GoalProgress
		deadline time.Time
	}
	var found []due
	for _, g := range goals {
		p := Progress(g, now)
		if p.IsCompleted || g.Deadline.Before(now) || g.Deadline.After(now.Add(within)) {
			continue
		}
		found = append(found, due{p: p, deadline: g.Deadline})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].deadline.Before(found[j].deadline) })

	out := make([]GoalProgress, 0, len(found))
	for _, d := range found {
		out = append(out, d.p)
	}
	return out
}
