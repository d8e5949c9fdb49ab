package domain

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MinAccountNameLength = 3
	MaxAccountNameLength = 100
	MaxDescriptionLength = 500
	MaxCategoryLength    = 100
	DefaultCurrency      = "EUR"
	DefaultPageSize      = 20
	MaxPageSize          = 100
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "PLN": true, "CZK": true,
	"NOK": true, "DKK": true, "HUF": true, "RON": true,
}

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)

	if n < MinAccountNameLength {
		return NewValidationError("name", fmt.Sprintf("name must be at least %d characters", MinAccountNameLength))
	}
	if n > MaxAccountNameLength {
		return NewValidationError("name", fmt.Sprintf("name exceeds %d characters", MaxAccountNameLength))
	}
	return nil
}

// NormalizeCurrency upper-cases the code and applies the default.
func NormalizeCurrency(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return DefaultCurrency
	}
	return currency
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	if !validCurrencies[currency] {
		return NewValidationError("currency", currency+" is not a supported currency")
	}
	return nil
}

// ValidateAccountType validates account type
func ValidateAccountType(t AccountType) error {
	if !t.IsValid() {
		return NewValidationError("type", "unknown account type "+string(t))
	}
	return nil
}

// ValidateAmount checks 0 < amount <= max.
func ValidateAmount(amount, max decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewValidationError("amount", "amount must be positive")
	}
	if amount.GreaterThan(max) {
		return NewValidationError("amount", "amount cannot exceed "+max.String())
	}
	return nil
}

// ValidateTransactionType validates transaction type
func ValidateTransactionType(t TransactionType) error {
	if !t.IsValid() {
		return NewValidationError("type", "type must be INCOME or EXPENSE")
	}
	return nil
}

// ValidateTransaction checks the fields every stored transaction must satisfy.
func ValidateTransaction(t *Transaction, maxAmount decimal.Decimal) error {
	if t.AccountID == "" {
		return NewValidationError("account_id", "account is required")
	}
	if err := ValidateAmount(t.Amount, maxAmount); err != nil {
		return err
	}
	if err := ValidateTransactionType(t.Type); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return NewValidationError("date", "date is required")
	}
	if t.Description != nil && utf8.RuneCountInString(*t.Description) > MaxDescriptionLength {
		return NewValidationError("description", fmt.Sprintf("description exceeds %d characters", MaxDescriptionLength))
	}
	if t.Category != nil && utf8.RuneCountInString(*t.Category) > MaxCategoryLength {
		return NewValidationError("category", fmt.Sprintf("category exceeds %d characters", MaxCategoryLength))
	}
	return nil
}

// ValidatePagination applies defaults to page and limit and rejects
// values out of range.
func ValidatePagination(page, limit int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultPageSize
	}
	if page < 1 {
		return 0, 0, NewValidationError("page", "page must be positive")
	}
	if limit < 1 || limit > MaxPageSize {
		return 0, 0, NewValidationError("limit", fmt.Sprintf("limit must be between 1 and %d", MaxPageSize))
	}
	// the row offset is sent to postgres as int4
	if page-1 > math.MaxInt32/limit {
		return 0, 0, NewValidationError("page", "page is out of range")
	}
	return page, limit, nil
}
