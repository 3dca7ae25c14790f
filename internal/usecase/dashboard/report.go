package dashboard

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-dashboard/internal/pkg/currency"
)

// Markdown renders an overview as a markdown document, amounts in cur.
func Markdown(o *Overview, cur string) string {
	money := func(d decimal.Decimal) string { return currency.Format(d, cur) }
	pct := func(d decimal.Decimal) string { return d.StringFixed(1) + "%" }

	var b strings.Builder
	fmt.Fprintf(&b, "# WealthFlow summary\n\n")
	fmt.Fprintf(&b, "_Generated %s on the **%s** plan._\n\n", o.GeneratedAt.Format("2006-01-02 15:04"), o.Plan)

	fmt.Fprintf(&b, "## Net worth: %s\n\n", money(o.NetWorth.Total))
	fmt.Fprintf(&b, "| Component | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Cash flow balance | %s |\n", money(o.NetWorth.Liquidity))
	fmt.Fprintf(&b, "| Saved towards goals | %s |\n", money(o.NetWorth.Savings))
	if o.Portfolio != nil {
		fmt.Fprintf(&b, "| Crypto | %s |\n", money(o.NetWorth.Crypto))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Transactions\n\n")
	fmt.Fprintf(&b, "- Income: %s\n- Expenses: %s\n- Balance: %s\n- Count: %d\n\n",
		money(o.Transactions.TotalIncome), money(o.Transactions.TotalExpense),
		money(o.Transactions.Balance), o.Transactions.Count)

	if len(o.ExpenseBreakdown) > 0 {
		fmt.Fprintf(&b, "### Expenses by category\n\n| Category | Amount | Share |\n|---|---:|---:|\n")
		for _, s := range o.ExpenseBreakdown {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Category, money(s.Amount), pct(s.Percentage))
		}
		b.WriteString("\n")
	}

	if len(o.Monthly) > 0 {
		fmt.Fprintf(&b, "### Monthly\n\n| Month | Income | Expenses | Balance |\n|---|---:|---:|---:|\n")
		for _, m := range o.Monthly {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", m.Month, money(m.Income), money(m.Expense), money(m.Balance))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Goals (%d/%d completed, %s overall)\n\n", o.Goals.Completed, o.Goals.Count, pct(o.Goals.OverallProgress))
	if len(o.DueSoon) > 0 {
		for _, p := range o.DueSoon {
			fmt.Fprintf(&b, "- Due in %d day(s): %s left, %s/day\n", p.DaysLeft, money(p.Remaining), money(p.DailySavingsNeeded))
		}
		b.WriteString("\n")
	}

	if o.Portfolio != nil {
		p := o.Portfolio
		fmt.Fprintf(&b, "## Crypto portfolio\n\n")
		if p.Stale {
			b.WriteString("> Live prices unavailable for some assets; purchase prices shown.\n\n")
		}
		fmt.Fprintf(&b, "| Symbol | Amount | Value | P/L | Allocation |\n|---|---:|---:|---:|---:|\n")
		for _, h := range p.Holdings {
			fmt.Fprintf(&b, "| %s | %s | %s | %s (%s) | %s |\n", h.Holding.Symbol, h.Holding.Amount.String(),
				money(h.CurrentValue), currency.Signed(h.ProfitLoss, cur), pct(h.ProfitLossPc), pct(h.Allocation))
		}
		fmt.Fprintf(&b, "\nTotal %s, invested %s, P/L %s (%s)\n\n", money(p.CurrentValue), money(p.Invested),
			currency.Signed(p.ProfitLoss, cur), pct(p.ProfitLossPc))
	}

	if o.UnreadCount > 0 {
		fmt.Fprintf(&b, "_%d unread notification(s)._\n", o.UnreadCount)
	}
	return b.String()
}
