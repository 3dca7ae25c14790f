package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GoalCategory represents what a financial goal saves for
type GoalCategory string

const (
	GoalCategoryEmergency  GoalCategory = "emergency"
	GoalCategoryVacation   GoalCategory = "vacation"
	GoalCategoryHome       GoalCategory = "home"
	GoalCategoryVehicle    GoalCategory = "vehicle"
	GoalCategoryEducation  GoalCategory = "education"
	GoalCategoryRetirement GoalCategory = "retirement"
	GoalCategoryOther      GoalCategory = "other"
)

// Valid reports whether c belongs to the enumeration.
func (c GoalCategory) Valid() bool {
	switch c {
	case GoalCategoryEmergency, GoalCategoryVacation, GoalCategoryHome, GoalCategoryVehicle,
		GoalCategoryEducation, GoalCategoryRetirement, GoalCategoryOther:
		return true
	}
	return false
}

// Contribution is a single deposit towards a goal
type Contribution struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	Note   string          `json:"note,omitempty"`
}

// Goal represents a savings goal.
// Contributions are the source of truth: CurrentAmount is persisted for
// readers of the snapshot but always equals the sum of contribution amounts.
type Goal struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Deadline      time.Time       `json:"deadline"`
	Category      GoalCategory    `json:"category"`
	Contributions []Contribution  `json:"contributions"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// GetID implements Record
func (g Goal) GetID() string { return g.ID }

// ContributedAmount sums the contribution amounts.
func (g Goal) ContributedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, c := range g.Contributions {
		total = total.Add(c.Amount)
	}
	return total
}

// Normalize recomputes CurrentAmount from the contributions.
func (g Goal) Normalize() Goal {
	g.CurrentAmount = g.ContributedAmount()
	return g
}

// Validate ensures the goal adheres to domain rules
// CRITICAL: TargetAmount must be strictly positive so progress never divides by zero
func (g Goal) Validate() error {
	if g.ID == "" {
		return invalid("goal id cannot be empty")
	}
	if strings.TrimSpace(g.Title) == "" {
		return invalid("goal title cannot be empty")
	}
	if !g.TargetAmount.IsPositive() {
		return invalid("goal target amount must be positive")
	}
	if g.CurrentAmount.IsNegative() {
		return invalid("goal current amount must be non-negative")
	}
	if g.Deadline.IsZero() {
		return invalid("goal deadline is required")
	}
	if !g.Category.Valid() {
		return invalid("unknown goal category %q", g.Category)
	}
	for _, c := range g.Contributions {
		if c.ID == "" {
			return invalid("contribution id cannot be empty")
		}
		if !c.Amount.IsPositive() {
			return invalid("contribution amount must be positive")
		}
	}
	return nil
}

// GoalDraft is the caller-supplied part of a new goal.
// InitialAmount, when positive, is recorded as the first contribution.
type GoalDraft struct {
	Title         string          `json:"title"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	InitialAmount decimal.Decimal `json:"initialAmount"`
	Deadline      time.Time       `json:"deadline"`
	Category      GoalCategory    `json:"category"`
}

// GoalPatch holds the fields that may be shallow-merged into a goal.
// The saved amount is only changed through contributions.
type GoalPatch struct {
	Title        *string          `json:"title,omitempty"`
	TargetAmount *decimal.Decimal `json:"targetAmount,omitempty"`
	Deadline     *time.Time       `json:"deadline,omitempty"`
	Category     *GoalCategory    `json:"category,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p GoalPatch) IsEmpty() bool {
	return p.Title == nil && p.TargetAmount == nil && p.Deadline == nil && p.Category == nil
}

// Apply returns g with the patch merged in.
func (p GoalPatch) Apply(g Goal) Goal {
	if p.Title != nil {
		g.Title = strings.TrimSpace(*p.Title)
	}
	if p.TargetAmount != nil {
		g.TargetAmount = *p.TargetAmount
	}
	if p.Deadline != nil {
		g.Deadline = *p.Deadline
	}
	if p.Category != nil {
		g.Category = *p.Category
	}
	return g
}
