package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind represents the direction of a transaction
type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "income"
	TransactionKindExpense TransactionKind = "expense"
)

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	return k == TransactionKindIncome || k == TransactionKindExpense
}

// TransactionCategory is a closed enumeration shared by income and expenses
type TransactionCategory string

const (
	CategorySalary        TransactionCategory = "salary"
	CategoryFreelance     TransactionCategory = "freelance"
	CategoryInvestment    TransactionCategory = "investment"
	CategoryGift          TransactionCategory = "gift"
	CategoryFood          TransactionCategory = "food"
	CategoryTransport     TransactionCategory = "transport"
	CategoryHousing       TransactionCategory = "housing"
	CategoryUtilities     TransactionCategory = "utilities"
	CategoryEntertainment TransactionCategory = "entertainment"
	CategoryShopping      TransactionCategory = "shopping"
	CategoryHealth        TransactionCategory = "health"
	CategoryEducation     TransactionCategory = "education"
	CategoryOther         TransactionCategory = "other"
)

var transactionCategories = map[TransactionCategory]bool{
	CategorySalary: true, CategoryFreelance: true, CategoryInvestment: true, CategoryGift: true,
	CategoryFood: true, CategoryTransport: true, CategoryHousing: true, CategoryUtilities: true,
	CategoryEntertainment: true, CategoryShopping: true, CategoryHealth: true,
	CategoryEducation: true, CategoryOther: true,
}

// Valid reports whether c belongs to the enumeration.
func (c TransactionCategory) Valid() bool { return transactionCategories[c] }

// Transaction represents an income or expense record
type Transaction struct {
	ID          string              `json:"id"`
	Kind        TransactionKind     `json:"type"`
	Category    TransactionCategory `json:"category"`
	Amount      decimal.Decimal     `json:"amount"` // non-negative
	Description string              `json:"description"`
	Date        time.Time           `json:"date"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// GetID implements Record
func (t Transaction) GetID() string { return t.ID }

// Validate ensures the transaction adheres to domain rules
// Returns an error wrapping ErrValidation if validation fails
func (t Transaction) Validate() error {
	if t.ID == "" {
		return invalid("transaction id cannot be empty")
	}
	if !t.Kind.Valid() {
		return invalid("transaction type %q must be income or expense", t.Kind)
	}
	if !t.Category.Valid() {
		return invalid("unknown transaction category %q", t.Category)
	}
	if t.Amount.IsNegative() {
		return invalid("transaction amount must be non-negative")
	}
	if t.Date.IsZero() {
		return invalid("transaction date is required")
	}
	return nil
}

// TransactionDraft is the caller-supplied part of a new transaction
type TransactionDraft struct {
	Kind        TransactionKind     `json:"type"`
	Category    TransactionCategory `json:"category"`
	Amount      decimal.Decimal     `json:"amount"`
	Description string              `json:"description"`
	Date        time.Time           `json:"date"`
}

// Build stamps the draft with an id and creation time.
func (d TransactionDraft) Build(id string, now time.Time) Transaction {
	date := d.Date
	if date.IsZero() {
		date = now
	}
	return Transaction{
		ID:          id,
		Kind:        d.Kind,
		Category:    d.Category,
		Amount:      d.Amount,
		Description: strings.TrimSpace(d.Description),
		Date:        date,
		CreatedAt:   now,
	}
}

// TransactionPatch holds the fields to shallow-merge into a transaction.
// Nil fields are left untouched.
type TransactionPatch struct {
	Kind        *TransactionKind     `json:"type,omitempty"`
	Category    *TransactionCategory `json:"category,omitempty"`
	Amount      *decimal.Decimal     `json:"amount,omitempty"`
	Description *string              `json:"description,omitempty"`
	Date        *time.Time           `json:"date,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Kind == nil && p.Category == nil && p.Amount == nil && p.Description == nil && p.Date == nil
}

// Apply returns t with the patch merged in.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Kind != nil {
		t.Kind = *p.Kind
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return t
}
