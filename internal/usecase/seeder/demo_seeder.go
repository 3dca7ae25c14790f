// Package seeder holds the documented demo records installed the first time
// an entity collection is loaded empty.
package seeder

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
)

// Fixed UUIDs for demo records, so a reseed never produces a different set
var (
	TX_SALARY    = uuid.MustParse("00000000-0000-0000-0001-000000000001")
	TX_RENT      = uuid.MustParse("00000000-0000-0000-0001-000000000002")
	TX_GROCERIES = uuid.MustParse("00000000-0000-0000-0001-000000000003")
	TX_FREELANCE = uuid.MustParse("00000000-0000-0000-0001-000000000004")
	TX_TRANSPORT = uuid.MustParse("00000000-0000-0000-0001-000000000005")

	GOAL_EMERGENCY = uuid.MustParse("00000000-0000-0000-0002-000000000001")
	GOAL_VACATION  = uuid.MustParse("00000000-0000-0000-0002-000000000002")
	GOAL_CAR       = uuid.MustParse("00000000-0000-0000-0002-000000000003")

	HOLDING_BTC = uuid.MustParse("00000000-0000-0000-0003-000000000001")
	HOLDING_ETH = uuid.MustParse("00000000-0000-0000-0003-000000000002")
)

const day = 24 * time.Hour

// Transactions returns the demo transactions, dated relative to now.
func Transactions(now time.Time) []domain.Transaction {
	tx := func(id uuid.UUID, kind domain.TransactionKind, cat domain.TransactionCategory, amount int64, desc string, daysAgo int) domain.Transaction {
		return domain.Transaction{
			ID:          id.String(),
			Kind:        kind,
			Category:    cat,
			Amount:      decimal.NewFromInt(amount),
			Description: desc,
			Date:        now.Add(-time.Duration(daysAgo) * day),
			CreatedAt:   now,
		}
	}
	return []domain.Transaction{
		tx(TX_SALARY, domain.TransactionKindIncome, domain.CategorySalary, 5000, "Monthly salary", 14),
		tx(TX_RENT, domain.TransactionKindExpense, domain.CategoryHousing, 1500, "Rent", 13),
		tx(TX_GROCERIES, domain.TransactionKindExpense, domain.CategoryFood, 320, "Groceries", 7),
		tx(TX_FREELANCE, domain.TransactionKindIncome, domain.CategoryFreelance, 1200, "Website project", 5),
		tx(TX_TRANSPORT, domain.TransactionKindExpense, domain.CategoryTransport, 90, "Monthly transit pass", 2),
	}
}

// Goals returns the demo goals. CurrentAmount is filled by the store from the contributions.
func Goals(now time.Time) []domain.Goal {
	contribution := func(goal uuid.UUID, n int, amount int64, daysAgo int) domain.Contribution {
		return domain.Contribution{
			ID:     uuid.NewSHA1(goal, []byte{byte(n)}).String(),
			Amount: decimal.NewFromInt(amount),
			Date:   now.Add(-time.Duration(daysAgo) * day),
			Note:   "Initial deposit",
		}
	}
	return []domain.Goal{
		{
			ID:            GOAL_EMERGENCY.String(),
			Title:         "Emergency fund",
			TargetAmount:  decimal.NewFromInt(10000),
			Deadline:      now.Add(365 * day),
			Category:      domain.GoalCategoryEmergency,
			Contributions: []domain.Contribution{contribution(GOAL_EMERGENCY, 1, 3500, 60)},
			CreatedAt:     now,
		},
		{
			ID:            GOAL_VACATION.String(),
			Title:         "Summer vacation",
			TargetAmount:  decimal.NewFromInt(3000),
			Deadline:      now.Add(120 * day),
			Category:      domain.GoalCategoryVacation,
			Contributions: []domain.Contribution{contribution(GOAL_VACATION, 1, 1200, 30)},
			CreatedAt:     now,
		},
		{
			ID:            GOAL_CAR.String(),
			Title:         "New car",
			TargetAmount:  decimal.NewFromInt(25000),
			Deadline:      now.Add(730 * day),
			Category:      domain.GoalCategoryVehicle,
			Contributions: []domain.Contribution{contribution(GOAL_CAR, 1, 5000, 90)},
			CreatedAt:     now,
		},
	}
}

// Holdings returns the demo crypto holdings.
func Holdings(now time.Time) []domain.CryptoHolding {
	return []domain.CryptoHolding{
		{
			ID:            HOLDING_BTC.String(),
			Symbol:        "BTC",
			Name:          "Bitcoin",
			Amount:        decimal.RequireFromString("0.5"),
			PurchasePrice: decimal.NewFromInt(30000),
			PurchaseDate:  now.Add(-180 * day),
			CreatedAt:     now,
		},
		{
			ID:            HOLDING_ETH.String(),
			Symbol:        "ETH",
			Name:          "Ethereum",
			Amount:        decimal.NewFromInt(3),
			PurchasePrice: decimal.NewFromInt(2000),
			PurchaseDate:  now.Add(-120 * day),
			CreatedAt:     now,
		},
	}
}

// WelcomeNotifications returns the template notifications injected once per
// identity when its notification list starts empty.
func WelcomeNotifications() []domain.NotificationDraft {
	return []domain.NotificationDraft{
		{
			Type:     domain.NotificationInfo,
			Category: domain.NotificationCategorySystem,
			Title:    "Welcome to WealthFlow",
			Message:  "Track your income, expenses, goals and crypto in one place.",
			Link:     "/dashboard",
			Icon:     "sparkles",
		},
		{
			Type:     domain.NotificationSuccess,
			Category: domain.NotificationCategoryGoal,
			Title:    "Set your first goal",
			Message:  "Saving towards something specific makes it easier to stay on track.",
			Link:     "/goals",
			Icon:     "target",
		},
		{
			Type:     domain.NotificationInfo,
			Category: domain.NotificationCategorySubscription,
			Title:    "Try WealthFlow Pro",
			Message:  "Unlock the crypto portfolio and advanced analytics with a free trial.",
			Link:     "/subscription",
			Icon:     "crown",
		},
	}
}
