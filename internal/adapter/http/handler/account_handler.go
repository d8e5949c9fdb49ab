package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id, userID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]*domain.Account, error)
	UpdateAccount(ctx context.Context, input usecase.UpdateAccountInput) (*domain.Account, error)
	DeleteAccount(ctx context.Context, id, userID string) error
	History(ctx context.Context, id, userID string, limit int) ([]*domain.AuditLog, error)
}

// AccountReconciler repairs a single account on demand.
type AccountReconciler interface {
	ReconcileAccount(ctx context.Context, accountID, userID string) (*usecase.ReconciliationResult, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC  AccountService
	reconciler AccountReconciler
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, reconciler AccountReconciler) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, reconciler: reconciler}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req dto.CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput(uid))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists the caller's accounts, newest first.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	accounts, err := h.accountUC.ListAccounts(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// Update applies a partial update.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req dto.UpdateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.accountUC.UpdateAccount(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id"), uid))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Delete removes an account whose balance is zero.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.accountUC.DeleteAccount(r.Context(), chi.URLParam(r, "id"), uid); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// History lists the account's audit trail.
func (h *AccountHandler) History(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit, err := parseIntQuery(r, "limit", usecase.DefaultHistoryLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logs, err := h.accountUC.History(r.Context(), chi.URLParam(r, "id"), uid, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}

// Reconcile recomputes the account balance from its transactions.
func (h *AccountHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.reconciler.ReconcileAccount(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}
