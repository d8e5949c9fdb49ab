package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FutureDatePolicy controls whether a transaction may be dated after now.
type FutureDatePolicy string

const (
	// FutureDatesRejectOnCreate rejects future dates on create only.
	FutureDatesRejectOnCreate FutureDatePolicy = "reject_on_create"
	// FutureDatesReject rejects future dates on create and update.
	FutureDatesReject FutureDatePolicy = "reject"
	// FutureDatesAllow accepts any date.
	FutureDatesAllow FutureDatePolicy = "allow"
)

// ParseFutureDatePolicy parses a configured policy name.
func ParseFutureDatePolicy(s string) (FutureDatePolicy, error) {
	switch p := FutureDatePolicy(s); p {
	case FutureDatesRejectOnCreate, FutureDatesReject, FutureDatesAllow:
		return p, nil
	default:
		return "", fmt.Errorf("unknown future date policy %q", s)
	}
}

// DefaultMaxTransactionAmount is the largest accepted transaction amount.
var DefaultMaxTransactionAmount = decimal.NewFromInt(1_000_000)

// Policy carries the business rules that are configurable per deployment.
type Policy struct {
	FutureDates                   FutureDatePolicy
	MaxTransactionAmount          decimal.Decimal
	EnforceNonNegativeOnReconcile bool
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		FutureDates:          FutureDatesRejectOnCreate,
		MaxTransactionAmount: DefaultMaxTransactionAmount,
	}
}

// CheckCreateDate applies the future date rule for new transactions.
func (p Policy) CheckCreateDate(date, now time.Time) error {
	if p.FutureDates == FutureDatesAllow {
		return nil
	}
	return validateNotFuture(date, now)
}

// CheckUpdateDate applies the future date rule for edited transactions.
func (p Policy) CheckUpdateDate(date, now time.Time) error {
	if p.FutureDates != FutureDatesReject {
		return nil
	}
	return validateNotFuture(date, now)
}

func validateNotFuture(date, now time.Time) error {
	if date.After(now) {
		return NewValidationError("date", "date cannot be in the future")
	}
	return nil
}

// CheckReconciledBalance applies the optional non-negative rule to a
// balance produced by reconciliation.
func (p Policy) CheckReconciledBalance(a *Account, balance decimal.Decimal) error {
	if p.EnforceNonNegativeOnReconcile && a.Type.RequiresNonNegativeBalance() && balance.IsNegative() {
		return fmt.Errorf("%w: %s account would reach %s", ErrNegativeBalanceNotAllowed, a.Type, balance.String())
	}
	return nil
}
