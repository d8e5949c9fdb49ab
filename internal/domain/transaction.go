package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a money movement.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// IsValid reports whether t is INCOME or EXPENSE.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a single income or expense against an account.
// Amount is always positive; the sign comes from Type.
type Transaction struct {
	ID          string
	UserID      string
	AccountID   string
	Amount      decimal.Decimal
	Type        TransactionType
	Category    *string
	Description *string
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Account is populated by listings that join the owning account.
	Account *AccountRef
}

// SignedAmount returns the amount as it affects the account balance.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionPatch holds the fields of a partial update. Nil means unchanged.
type TransactionPatch struct {
	Amount      *decimal.Decimal
	Type        *TransactionType
	Category    *string
	Description *string
	Date        *time.Time
}

// Apply merges the patch over t. Empty strings leave the field unchanged.
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil && *p.Category != "" {
		c := *p.Category
		t.Category = &c
	}
	if p.Description != nil && *p.Description != "" {
		d := *p.Description
		t.Description = &d
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
}

// TransactionFilter selects a page of a user's transactions.
type TransactionFilter struct {
	UserID    string
	AccountID string // empty means all accounts
	Type      TransactionType
	Category  string
	Search    string
	From      *time.Time // inclusive
	To        *time.Time // inclusive
	Page      int
	Limit     int
}

// Offset returns the row offset of the filter's page.
func (f TransactionFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// TransactionPage is one page of a listing.
type TransactionPage struct {
	Data  []*Transaction
	Total int64
	Page  int
	Limit int
}

// Pages returns the page count, at least 1.
func (p *TransactionPage) Pages() int {
	if p.Limit <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

// AggregateFilter scopes a grouped sum. From is inclusive, To is exclusive.
type AggregateFilter struct {
	UserID    string
	AccountID string // empty means all accounts
	From      *time.Time
	To        *time.Time
}

// TypeTotals holds summed amounts and counts per transaction type.
type TypeTotals struct {
	Income       decimal.Decimal
	Expense      decimal.Decimal
	IncomeCount  int64
	ExpenseCount int64
}

// Add accumulates the total for a single type.
func (t *TypeTotals) Add(typ TransactionType, sum decimal.Decimal, count int64) {
	switch typ {
	case TransactionTypeIncome:
		t.Income = t.Income.Add(sum)
		t.IncomeCount += count
	case TransactionTypeExpense:
		t.Expense = t.Expense.Add(sum)
		t.ExpenseCount += count
	}
}

// Net is income minus expense.
func (t TypeTotals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// Count is the number of transactions of both types.
func (t TypeTotals) Count() int64 {
	return t.IncomeCount + t.ExpenseCount
}
