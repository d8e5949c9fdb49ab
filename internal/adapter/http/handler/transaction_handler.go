package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id, userID string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, input usecase.UpdateTransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id, userID string) error
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) (*domain.TransactionPage, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	txUC     TransactionService
	location *time.Location
}

// NewTransactionHandler creates a new TransactionHandler. Plain dates in
// requests are read as midnight in loc.
func NewTransactionHandler(txUC TransactionService, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionHandler{txUC: txUC, location: loc}
}

// Create records a transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req dto.CreateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Date.Localize(h.location)

	t, err := h.txUC.CreateTransaction(r.Context(), req.ToUseCaseInput(uid))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(t))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t, err := h.txUC.GetTransaction(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(t))
}

// Update applies a partial update.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req dto.UpdateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Date.Localize(h.location)

	t, err := h.txUC.UpdateTransaction(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id"), uid))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(t))
}

// Delete removes a transaction.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.txUC.DeleteTransaction(r.Context(), chi.URLParam(r, "id"), uid); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List lists the caller's transactions across all accounts.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "")
}

// ListByAccount lists the transactions of one account.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "id"))
}

func (h *TransactionHandler) list(w http.ResponseWriter, r *http.Request, accountID string) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filter, err := h.parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter.UserID = uid
	filter.AccountID = accountID

	page, err := h.txUC.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionPageFromDomain(page))
}

func (h *TransactionHandler) parseFilter(r *http.Request) (domain.TransactionFilter, error) {
	q := r.URL.Query()
	var filter domain.TransactionFilter

	var err error
	if filter.Page, err = parseIntQuery(r, "page", 1); err != nil {
		return filter, err
	}
	if filter.Limit, err = parseIntQuery(r, "limit", domain.DefaultPageSize); err != nil {
		return filter, err
	}

	if typ := strings.ToUpper(q.Get("type")); typ != "" {
		filter.Type = domain.TransactionType(typ)
		if !filter.Type.IsValid() {
			return filter, domain.NewValidationError("type", "type must be INCOME or EXPENSE")
		}
	}
	filter.Category = q.Get("category")
	filter.Search = strings.TrimSpace(q.Get("search"))

	if s := q.Get("from"); s != "" {
		from, _, err := dto.ParseDate(s, h.location)
		if err != nil {
			return filter, domain.NewValidationError("from", "from must be a date")
		}
		filter.From = &from
	}
	if s := q.Get("to"); s != "" {
		to, dateOnly, err := dto.ParseDate(s, h.location)
		if err != nil {
			return filter, domain.NewValidationError("to", "to must be a date")
		}
		if dateOnly {
			// inclusive of the whole day
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, domain.NewValidationError("to", "to must not be before from")
	}

	return filter, nil
}
