package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidateAccountName(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		if err := ValidateAccountName("Wallet"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("too short", func(t *testing.T) {
		err := ValidateAccountName("  ab ")
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "name" {
			t.Fatalf("expected name validation error, got %v", err)
		}
	})

	t.Run("too long", func(t *testing.T) {
		err := ValidateAccountName(strings.Repeat("a", MaxAccountNameLength+1))
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestValidateCurrency(t *testing.T) {
	t.Parallel()

	if got := NormalizeCurrency(" usd "); got != "USD" {
		t.Fatalf("expected USD, got %q", got)
	}
	if got := NormalizeCurrency(""); got != DefaultCurrency {
		t.Fatalf("expected default currency, got %q", got)
	}
	for _, c := range []string{"EUR", "USD", "GBP", "JPY"} {
		if err := ValidateCurrency(c); err != nil {
			t.Fatalf("expected %s to be supported, got %v", c, err)
		}
	}
	if err := ValidateCurrency("XYZ"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	max := DefaultMaxTransactionAmount

	tests := []struct {
		name    string
		amount  decimal.Decimal
		wantErr bool
	}{
		{"positive", decimal.NewFromFloat(100.25), false},
		{"at max", max, false},
		{"zero", decimal.Zero, true},
		{"negative", decimal.NewFromInt(-5), true},
		{"above max", max.Add(decimal.NewFromFloat(0.01)), true},
	}

	for _, tt := range tests {
		err := ValidateAmount(tt.amount, max)
		if tt.wantErr != (err != nil) {
			t.Errorf("%s: wantErr=%v got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestValidateTransaction(t *testing.T) {
	t.Parallel()

	valid := func() *Transaction {
		return &Transaction{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(10),
			Type:      TransactionTypeExpense,
			Date:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	if err := ValidateTransaction(valid(), DefaultMaxTransactionAmount); err != nil {
		t.Fatalf("expected valid transaction, got %v", err)
	}

	cases := map[string]func(*Transaction){
		"account_id": func(tx *Transaction) { tx.AccountID = "" },
		"amount":     func(tx *Transaction) { tx.Amount = decimal.Zero },
		"type":       func(tx *Transaction) { tx.Type = "TRANSFER" },
		"date":       func(tx *Transaction) { tx.Date = time.Time{} },
		"description": func(tx *Transaction) {
			d := strings.Repeat("x", MaxDescriptionLength+1)
			tx.Description = &d
		},
	}

	for field, mutate := range cases {
		tx := valid()
		mutate(tx)
		var ve *ValidationError
		err := ValidateTransaction(tx, DefaultMaxTransactionAmount)
		if !errors.As(err, &ve) || ve.Field != field {
			t.Errorf("expected validation error on %s, got %v", field, err)
		}
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	page, limit, err := ValidatePagination(0, 0)
	if err != nil || page != 1 || limit != DefaultPageSize {
		t.Fatalf("expected defaults, got page=%d limit=%d err=%v", page, limit, err)
	}

	tests := []struct {
		name    string
		page    int
		limit   int
		wantErr string
	}{
		{name: "limit too large", page: 1, limit: MaxPageSize + 1, wantErr: "limit"},
		{name: "negative page", page: -1, limit: 10, wantErr: "page"},
		{name: "offset overflows int4", page: 30_000_000, limit: MaxPageSize, wantErr: "page"},
		{name: "last page within int4", page: math.MaxInt32/MaxPageSize + 1, limit: MaxPageSize},
		{name: "large page with small limit", page: 30_000_000, limit: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ValidatePagination(tt.page, tt.limit)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.Field != tt.wantErr {
				t.Fatalf("expected validation error on %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPolicy_FutureDates(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)

	tests := []struct {
		policy    FutureDatePolicy
		createErr bool
		updateErr bool
	}{
		{FutureDatesRejectOnCreate, true, false},
		{FutureDatesReject, true, true},
		{FutureDatesAllow, false, false},
	}

	for _, tt := range tests {
		p := Policy{FutureDates: tt.policy, MaxTransactionAmount: DefaultMaxTransactionAmount}
		if err := p.CheckCreateDate(future, now); (err != nil) != tt.createErr {
			t.Errorf("%s create: wantErr=%v got %v", tt.policy, tt.createErr, err)
		}
		if err := p.CheckUpdateDate(future, now); (err != nil) != tt.updateErr {
			t.Errorf("%s update: wantErr=%v got %v", tt.policy, tt.updateErr, err)
		}
		if err := p.CheckCreateDate(now, now); err != nil {
			t.Errorf("%s: now must always be accepted, got %v", tt.policy, err)
		}
	}

	if _, err := ParseFutureDatePolicy("sometimes"); err == nil {
		t.Fatal("expected unknown policy to fail")
	}
}

func TestPolicy_CheckReconciledBalance(t *testing.T) {
	t.Parallel()

	cash := &Account{Type: AccountTypeCash}
	card := &Account{Type: AccountTypeCreditCard}
	negative := decimal.NewFromInt(-10)

	lenient := DefaultPolicy()
	if err := lenient.CheckReconciledBalance(cash, negative); err != nil {
		t.Fatalf("default policy must not enforce, got %v", err)
	}

	strict := DefaultPolicy()
	strict.EnforceNonNegativeOnReconcile = true
	if err := strict.CheckReconciledBalance(cash, negative); !errors.Is(err, ErrNegativeBalanceNotAllowed) {
		t.Fatalf("expected ErrNegativeBalanceNotAllowed, got %v", err)
	}
	if err := strict.CheckReconciledBalance(card, negative); err != nil {
		t.Fatalf("credit cards may go negative, got %v", err)
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want ErrorKind
	}{
		{NewValidationError("amount", "bad"), KindValidation},
		{ErrAccountNotFound, KindNotFound},
		{ErrTransactionNotFound, KindNotFound},
		{ErrNonZeroBalance, KindConflict},
		{ErrDuplicateAccountName, KindConflict},
		{ErrUnauthorized, KindUnauthorized},
		{errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
