package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
)

// HoldingValuation joins a holding with its live quote
type HoldingValuation struct {
	Holding      domain.CryptoHolding `json:"holding"`
	Price        decimal.Decimal      `json:"currentPrice"`
	Invested     decimal.Decimal      `json:"invested"`
	CurrentValue decimal.Decimal      `json:"currentValue"`
	ProfitLoss   decimal.Decimal      `json:"profitLoss"`
	ProfitLossPc decimal.Decimal      `json:"profitLossPercentage"`
	Change24h    decimal.Decimal      `json:"priceChangePercentage24h"`
	Allocation   decimal.Decimal      `json:"allocation"` // share of the portfolio current value, in percent
	Stale        bool                 `json:"stale"`      // no live quote: valued at purchase price
}

// PortfolioStats aggregates the valuation of all holdings
type PortfolioStats struct {
	Invested     decimal.Decimal    `json:"totalInvested"`
	CurrentValue decimal.Decimal    `json:"currentValue"`
	ProfitLoss   decimal.Decimal    `json:"profitLoss"`
	ProfitLossPc decimal.Decimal    `json:"profitLossPercentage"`
	Change24h    decimal.Decimal    `json:"change24hValue"`
	Stale        bool               `json:"stale"` // at least one holding lacks a live quote
	Holdings     []HoldingValuation `json:"holdings"`
}

// Portfolio values holdings with quotes keyed by symbol.
// Logic:
//   - Invested = Σ(amount × purchasePrice)
//   - CurrentValue uses the quote price, or the purchase price (flagged stale) when no quote is known
//   - ProfitLoss = CurrentValue - Invested; percentage is 0 when nothing was invested
func Portfolio(holdings []domain.CryptoHolding, quotes map[string]domain.Quote) PortfolioStats {
	stats := PortfolioStats{
		Invested:     decimal.Zero,
		CurrentValue: decimal.Zero,
		Change24h:    decimal.Zero,
		Holdings:     make([]HoldingValuation, 0, len(holdings)),
	}

	for _, h := range holdings {
		v := HoldingValuation{
			Holding:   h,
			Invested:  h.Invested(),
			Change24h: decimal.Zero,
		}

		q, ok := quotes[h.Symbol]
		if ok && q.Price.IsPositive() {
			v.Price = q.Price
			v.Change24h = q.Change24h
			v.Stale = q.Stale
		} else {
			v.Price = h.PurchasePrice
			v.Stale = true
		}

		v.CurrentValue = h.Amount.Mul(v.Price)
		v.ProfitLoss = v.CurrentValue.Sub(v.Invested)
		v.ProfitLossPc = percentOf(v.ProfitLoss, v.Invested)

		stats.Invested = stats.Invested.Add(v.Invested)
		stats.CurrentValue = stats.CurrentValue.Add(v.CurrentValue)
		// value moved over the last 24h: current - current / (1 + change%)
		if factor := decimal.NewFromInt(1).Add(v.Change24h.Div(hundred)); !v.Change24h.IsZero() && factor.IsPositive() {
			prev := v.CurrentValue.Div(factor)
			stats.Change24h = stats.Change24h.Add(v.CurrentValue.Sub(prev))
		}
		stats.Stale = stats.Stale || v.Stale
		stats.Holdings = append(stats.Holdings, v)
	}

	for i := range stats.Holdings {
		stats.Holdings[i].Allocation = percentOf(stats.Holdings[i].CurrentValue, stats.CurrentValue)
	}

	stats.ProfitLoss = stats.CurrentValue.Sub(stats.Invested)
	stats.ProfitLossPc = percentOf(stats.ProfitLoss, stats.Invested)
	return stats
}
