package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CryptoHolding represents a position in a crypto asset.
// It only carries what the user paid: live valuation is joined at read time
// from the market feed and is never persisted with the holding.
type CryptoHolding struct {
	ID            string          `json:"id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	PurchaseDate  time.Time       `json:"purchaseDate"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// GetID implements Record
func (h CryptoHolding) GetID() string { return h.ID }

// Invested returns amount × purchase price (the book value).
func (h CryptoHolding) Invested() decimal.Decimal {
	return h.Amount.Mul(h.PurchasePrice)
}

// Validate ensures the holding adheres to domain rules
func (h CryptoHolding) Validate() error {
	if h.ID == "" {
		return invalid("holding id cannot be empty")
	}
	if h.Symbol == "" {
		return invalid("holding symbol cannot be empty")
	}
	if h.Symbol != NormalizeSymbol(h.Symbol) {
		return invalid("holding symbol %q must be upper-case without spaces", h.Symbol)
	}
	if !h.Amount.IsPositive() {
		return invalid("holding amount must be positive")
	}
	if h.PurchasePrice.IsNegative() {
		return invalid("holding purchase price must be non-negative")
	}
	if h.PurchaseDate.IsZero() {
		return invalid("holding purchase date is required")
	}
	return nil
}

// NormalizeSymbol upper-cases and trims a ticker symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// HoldingDraft is the caller-supplied part of a new holding
type HoldingDraft struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	PurchaseDate  time.Time       `json:"purchaseDate"`
}

// Build stamps the draft with an id and creation time.
func (d HoldingDraft) Build(id string, now time.Time) CryptoHolding {
	date := d.PurchaseDate
	if date.IsZero() {
		date = now
	}
	return CryptoHolding{
		ID:            id,
		Symbol:        NormalizeSymbol(d.Symbol),
		Name:          strings.TrimSpace(d.Name),
		Amount:        d.Amount,
		PurchasePrice: d.PurchasePrice,
		PurchaseDate:  date,
		CreatedAt:     now,
	}
}

// HoldingPatch holds the fields to shallow-merge into a holding
type HoldingPatch struct {
	Name          *string          `json:"name,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice,omitempty"`
	PurchaseDate  *time.Time       `json:"purchaseDate,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p HoldingPatch) IsEmpty() bool {
	return p.Name == nil && p.Amount == nil && p.PurchasePrice == nil && p.PurchaseDate == nil
}

// Apply returns h with the patch merged in.
func (p HoldingPatch) Apply(h CryptoHolding) CryptoHolding {
	if p.Name != nil {
		h.Name = strings.TrimSpace(*p.Name)
	}
	if p.Amount != nil {
		h.Amount = *p.Amount
	}
	if p.PurchasePrice != nil {
		h.PurchasePrice = *p.PurchasePrice
	}
	if p.PurchaseDate != nil {
		h.PurchaseDate = *p.PurchaseDate
	}
	return h
}
