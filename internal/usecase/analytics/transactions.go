package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
)

// TransactionStats represents the linear aggregation of transactions
type TransactionStats struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
	Count        int             `json:"count"`
}

// Transactions sums income and expenses.
// Balance = income - expense
func Transactions(txs []domain.Transaction) TransactionStats {
	s := TransactionStats{TotalIncome: decimal.Zero, TotalExpense: decimal.Zero}
	for _, tx := range txs {
		switch tx.Kind {
		case domain.TransactionKindIncome:
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		case domain.TransactionKindExpense:
			s.TotalExpense = s.TotalExpense.Add(tx.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	s.Count = len(txs)
	return s
}

// CategoryShare is one line of a category breakdown
type CategoryShare struct {
	Category   domain.TransactionCategory `json:"category"`
	Amount     decimal.Decimal            `json:"amount"`
	Count      int                        `json:"count"`
	Percentage decimal.Decimal            `json:"percentage"`
}

// CategoryBreakdown groups transactions of one kind by category. Each share is
// a percentage of that kind's total. Lines are sorted by amount, largest first,
// ties broken by category name.
func CategoryBreakdown(txs []domain.Transaction, kind domain.TransactionKind) []CategoryShare {
	byCategory := make(map[domain.TransactionCategory]*CategoryShare)
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Kind != kind {
			continue
		}
		share, ok := byCategory[tx.Category]
		if !ok {
			share = &CategoryShare{Category: tx.Category, Amount: decimal.Zero}
			byCategory[tx.Category] = share
		}
		share.Amount = share.Amount.Add(tx.Amount)
		share.Count++
		total = total.Add(tx.Amount)
	}

	out := make([]CategoryShare, 0, len(byCategory))
	for _, share := range byCategory {
		share.Percentage = percentOf(share.Amount, total)
		out = append(out, *share)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthlyTotals is the income and expense of one calendar month
type MonthlyTotals struct {
	Month   string          `json:"month"` // YYYY-MM
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// Monthly returns the totals of the last n calendar months ending with now's
// month, oldest first. Months are taken in now's location.
func Monthly(txs []domain.Transaction, n int, now time.Time) []MonthlyTotals {
	if n <= 0 {
		return []MonthlyTotals{}
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(n - 1), 0)

	out := make([]MonthlyTotals, n)
	index := make(map[string]int, n)
	for i := range out {
		m := start.AddDate(0, i, 0).Format("2006-01")
		out[i] = MonthlyTotals{Month: m, Income: decimal.Zero, Expense: decimal.Zero}
		index[m] = i
	}

	for _, tx := range txs {
		i, ok := index[tx.Date.In(now.Location()).Format("2006-01")]
		if !ok {
			continue
		}
		if tx.Kind == domain.TransactionKindIncome {
			out[i].Income = out[i].Income.Add(tx.Amount)
		} else {
			out[i].Expense = out[i].Expense.Add(tx.Amount)
		}
	}
	for i := range out {
		out[i].Balance = out[i].Income.Sub(out[i].Expense)
	}
	return out
}
