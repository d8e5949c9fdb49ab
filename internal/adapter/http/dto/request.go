package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

const dateLayout = "2006-01-02"

// Date accepts either an RFC 3339 timestamp or a plain YYYY-MM-DD date.
type Date struct {
	time.Time
	// DateOnly is set when the input carried no time of day.
	DateOnly bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return domain.NewValidationError("date", "date must be a string")
	}
	parsed, dateOnly, err := ParseDate(s, time.UTC)
	if err != nil {
		return err
	}
	d.Time, d.DateOnly = parsed, dateOnly
	return nil
}

// Localize moves a date-only value to midnight in loc.
func (d *Date) Localize(loc *time.Location) {
	if d == nil || !d.DateOnly || loc == nil {
		return
	}
	y, m, day := d.Time.Date()
	d.Time = time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// ParseDate parses s as RFC 3339 or as a date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, false, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, domain.NewValidationError("date", "expected RFC 3339 timestamp or YYYY-MM-DD")
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name     string           `json:"name"     validate:"required,min=3,max=100"`
	Currency string           `json:"currency" validate:"omitempty,len=3"`
	Type     string           `json:"type"     validate:"omitempty,oneof=CASH BANK_ACCOUNT CREDIT_CARD INVESTMENT PREPAID"`
	Balance  *decimal.Decimal `json:"balance,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(userID string) usecase.CreateAccountInput {
	input := usecase.CreateAccountInput{
		UserID:   userID,
		Name:     r.Name,
		Currency: r.Currency,
		Type:     domain.AccountType(r.Type),
	}
	if r.Balance != nil {
		input.Balance = *r.Balance
	}
	return input
}

// UpdateAccountRequest is a partial update. Absent fields are unchanged.
type UpdateAccountRequest struct {
	Name     *string          `json:"name,omitempty"     validate:"omitempty,min=3,max=100"`
	Currency *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Type     *string          `json:"type,omitempty"     validate:"omitempty,oneof=CASH BANK_ACCOUNT CREDIT_CARD INVESTMENT PREPAID"`
	Balance  *decimal.Decimal `json:"balance,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateAccountRequest) ToUseCaseInput(id, userID string) usecase.UpdateAccountInput {
	input := usecase.UpdateAccountInput{
		ID:       id,
		UserID:   userID,
		Name:     r.Name,
		Currency: r.Currency,
		Balance:  r.Balance,
	}
	if r.Type != nil {
		t := domain.AccountType(*r.Type)
		input.Type = &t
	}
	return input
}

// CreateTransactionRequest represents a request to record a transaction.
type CreateTransactionRequest struct {
	AccountID   string           `json:"account_id"            validate:"required"`
	Amount      *decimal.Decimal `json:"amount"                validate:"required"`
	Type        string           `json:"type"                  validate:"required,oneof=INCOME EXPENSE"`
	Category    *string          `json:"category,omitempty"    validate:"omitempty,max=100"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Date        *Date            `json:"date"                  validate:"required"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput(userID string) usecase.CreateTransactionInput {
	return usecase.CreateTransactionInput{
		UserID:      userID,
		AccountID:   r.AccountID,
		Amount:      *r.Amount,
		Type:        domain.TransactionType(r.Type),
		Category:    r.Category,
		Description: r.Description,
		Date:        r.Date.Time,
	}
}

// UpdateTransactionRequest is a partial update. The account cannot change.
type UpdateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Type        *string          `json:"type,omitempty"        validate:"omitempty,oneof=INCOME EXPENSE"`
	Category    *string          `json:"category,omitempty"    validate:"omitempty,max=100"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Date        *Date            `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateTransactionRequest) ToUseCaseInput(id, userID string) usecase.UpdateTransactionInput {
	patch := domain.TransactionPatch{
		Amount:      r.Amount,
		Category:    r.Category,
		Description: r.Description,
	}
	if r.Type != nil {
		t := domain.TransactionType(*r.Type)
		patch.Type = &t
	}
	if r.Date != nil {
		d := r.Date.Time
		patch.Date = &d
	}
	return usecase.UpdateTransactionInput{ID: id, UserID: userID, Patch: patch}
}
