package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a financial account.
type AccountType string

const (
	AccountTypeCash        AccountType = "CASH"
	AccountTypeBankAccount AccountType = "BANK_ACCOUNT"
	AccountTypeCreditCard  AccountType = "CREDIT_CARD"
	AccountTypeInvestment  AccountType = "INVESTMENT"
	AccountTypePrepaid     AccountType = "PREPAID"
)

// DefaultAccountType is used when an account is created without a type.
const DefaultAccountType = AccountTypeCash

var accountTypes = map[AccountType]bool{
	AccountTypeCash:        true,
	AccountTypeBankAccount: true,
	AccountTypeCreditCard:  true,
	AccountTypeInvestment:  true,
	AccountTypePrepaid:     true,
}

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	return accountTypes[t]
}

// RequiresNonNegativeBalance reports whether the type holds physical or
// prepaid money that cannot go below zero.
func (t AccountType) RequiresNonNegativeBalance() bool {
	return t == AccountTypeCash || t == AccountTypePrepaid
}

// Account is a user's financial account. Balance and LastActivity are a
// cache of the account's transactions and are rewritten by reconciliation.
type Account struct {
	ID           string
	UserID       string
	Name         string
	Balance      decimal.Decimal
	Currency     string
	Type         AccountType
	LastActivity *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountRef is the short account view embedded in transaction listings.
type AccountRef struct {
	ID       string
	Name     string
	Currency string
	Type     AccountType
}

// ValidateManualBalance checks a balance that is being set by hand.
func (a *Account) ValidateManualBalance(balance decimal.Decimal) error {
	if a.Type.RequiresNonNegativeBalance() && balance.IsNegative() {
		return NewValidationError("balance", "balance cannot be negative for "+string(a.Type)+" accounts")
	}
	return nil
}

// CanDelete returns ErrNonZeroBalance unless the balance is exactly zero.
func (a *Account) CanDelete() error {
	if !a.Balance.IsZero() {
		return &NonZeroBalanceError{Balance: a.Balance}
	}
	return nil
}

// Ref returns the short view of the account.
func (a *Account) Ref() *AccountRef {
	return &AccountRef{ID: a.ID, Name: a.Name, Currency: a.Currency, Type: a.Type}
}
