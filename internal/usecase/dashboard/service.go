package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/analytics"
)

// RecentCount is the number of transactions shown on the dashboard.
const RecentCount = 5

// MonthsShown is the length of the monthly history (advanced analytics only).
const MonthsShown = 6

// DeadlineWindow is how far ahead goal deadlines are flagged.
const DeadlineWindow = 7 * 24 * time.Hour

// TransactionReader is the read side of the transaction store
type TransactionReader interface {
	List() []domain.Transaction
	Recent(n int) []domain.Transaction
}

// GoalReader is the read side of the goal store
type GoalReader interface {
	List() []domain.Goal
}

// HoldingReader is the read side of the holding store
type HoldingReader interface {
	List() []domain.CryptoHolding
	Symbols() []string
}

// Entitlements exposes the active plan
type Entitlements interface {
	Plan() domain.Plan
	Features() []domain.Feature
	HasFeature(f domain.Feature) bool
}

// UnreadCounter exposes the unread notification count
type UnreadCounter interface {
	UnreadCount() int
}

// NetWorthResult represents the calculated net worth
type NetWorthResult struct {
	Total     decimal.Decimal `json:"total"`
	Liquidity decimal.Decimal `json:"liquidity"` // income minus expenses
	Savings   decimal.Decimal `json:"savings"`   // saved towards goals
	Crypto    decimal.Decimal `json:"crypto"`    // current value of the holdings (zero when locked)
}

// Overview is everything the dashboard page shows
type Overview struct {
	GeneratedAt      time.Time                  `json:"generatedAt"`
	Plan             domain.Plan                `json:"plan"`
	Features         []domain.Feature           `json:"features"`
	NetWorth         NetWorthResult             `json:"netWorth"`
	Transactions     analytics.TransactionStats `json:"transactions"`
	ExpenseBreakdown []analytics.CategoryShare  `json:"expenseBreakdown"`
	IncomeBreakdown  []analytics.CategoryShare  `json:"incomeBreakdown"`
	Monthly          []analytics.MonthlyTotals  `json:"monthly,omitempty"`
	Goals            analytics.GoalsSummary     `json:"goals"`
	DueSoon          []analytics.GoalProgress   `json:"dueSoon"`
	Portfolio        *analytics.PortfolioStats  `json:"portfolio,omitempty"` // nil when the plan lacks crypto_portfolio
	Recent           []domain.Transaction       `json:"recentTransactions"`
	UnreadCount      int                        `json:"unreadNotifications"`
}

// DashboardService composes the derived analytics of every entity store
type DashboardService struct {
	Transactions  TransactionReader
	Goals         GoalReader
	Holdings      HoldingReader
	Subscription  Entitlements
	Notifications UnreadCounter
	Feed          domain.MarketFeed
	Clock         domain.Clock
}

// NewDashboardService creates a new DashboardService instance.
// feed may be nil, in which case holdings are valued at purchase price.
func NewDashboardService(
	transactions TransactionReader,
	goals GoalReader,
	holdings HoldingReader,
	subscription Entitlements,
	notifications UnreadCounter,
	feed domain.MarketFeed,
	clock domain.Clock,
) *DashboardService {
	return &DashboardService{
		Transactions:  transactions,
		Goals:         goals,
		Holdings:      holdings,
		Subscription:  subscription,
		Notifications: notifications,
		Feed:          feed,
		Clock:         clock,
	}
}

// Quotes fetches live quotes for symbols. It reads no store, so it may run
// outside whatever serializes store access. A feed failure is logged and
// yields the quotes that did arrive, if any.
func (s *DashboardService) Quotes(ctx context.Context, symbols []string) map[string]domain.Quote {
	if s.Feed == nil || len(symbols) == 0 {
		return nil
	}
	quotes, err := s.Feed.Quotes(ctx, symbols)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Market feed unavailable, valuing holdings at purchase price")
	}
	return quotes
}

// Portfolio values the holdings with live quotes.
// A feed failure never fails the call: the holdings fall back to their
// purchase price and are flagged stale.
func (s *DashboardService) Portfolio(ctx context.Context) analytics.PortfolioStats {
	return s.Valuation(s.Quotes(ctx, s.Holdings.Symbols()))
}

// Valuation values the holdings against quotes fetched earlier.
// Holdings without a quote are valued at purchase price and flagged stale.
func (s *DashboardService) Valuation(quotes map[string]domain.Quote) analytics.PortfolioStats {
	return analytics.Portfolio(s.Holdings.List(), quotes)
}

// GetOverview fetches quotes when the plan includes the crypto portfolio,
// then composes the dashboard.
func (s *DashboardService) GetOverview(ctx context.Context) (*Overview, error) {
	var quotes map[string]domain.Quote
	if s.Subscription.HasFeature(domain.FeatureCryptoPortfolio) {
		quotes = s.Quotes(ctx, s.Holdings.Symbols())
	}
	return s.Compose(quotes), nil
}

// Compose computes the dashboard from the stores and quotes fetched earlier.
// Logic:
//   - Transaction totals and breakdowns are always included
//   - Monthly history requires advanced_analytics
//   - Portfolio requires crypto_portfolio and is excluded from net worth otherwise
//   - Net worth = (income - expenses) + saved towards goals + crypto value
func (s *DashboardService) Compose(quotes map[string]domain.Quote) *Overview {
	now := s.Clock.Now()
	txs := s.Transactions.List()
	goals := s.Goals.List()

	o := &Overview{
		GeneratedAt:      now,
		Plan:             s.Subscription.Plan(),
		Features:         s.Subscription.Features(),
		Transactions:     analytics.Transactions(txs),
		ExpenseBreakdown: analytics.CategoryBreakdown(txs, domain.TransactionKindExpense),
		IncomeBreakdown:  analytics.CategoryBreakdown(txs, domain.TransactionKindIncome),
		Goals:            analytics.SummarizeGoals(goals, now),
		DueSoon:          analytics.DueSoon(goals, now, DeadlineWindow),
		Recent:           s.Transactions.Recent(RecentCount),
	}
	if s.Notifications != nil {
		o.UnreadCount = s.Notifications.UnreadCount()
	}
	if s.Subscription.HasFeature(domain.FeatureAdvancedAnalytics) {
		o.Monthly = analytics.Monthly(txs, MonthsShown, now)
	}

	crypto := decimal.Zero
	if s.Subscription.HasFeature(domain.FeatureCryptoPortfolio) {
		p := s.Valuation(quotes)
		o.Portfolio = &p
		crypto = p.CurrentValue
	}

	o.NetWorth = NetWorthResult{
		Liquidity: o.Transactions.Balance,
		Savings:   o.Goals.TotalSaved,
		Crypto:    crypto,
	}
	o.NetWorth.Total = o.NetWorth.Liquidity.Add(o.NetWorth.Savings).Add(o.NetWorth.Crypto)
	return o
}
