package mocks

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// Store is an in-memory implementation of the repositories and the
// transaction manager. Writes made after Begin are discarded by Rollback,
// so tests can observe all-or-nothing behavior. Faults registered with
// Fail are returned by the named method, e.g. "transactions.SumByType".
type Store struct {
	mu     sync.Mutex
	state  storeState
	saved  *storeState
	faults map[string]error
}

type storeState struct {
	accounts     map[string]domain.Account
	transactions map[string]domain.Transaction
	events       []domain.OutboxEvent
	audits       []domain.AuditLog
}

func (s storeState) clone() storeState {
	c := storeState{
		accounts:     make(map[string]domain.Account, len(s.accounts)),
		transactions: make(map[string]domain.Transaction, len(s.transactions)),
		events:       append([]domain.OutboxEvent(nil), s.events...),
		audits:       append([]domain.AuditLog(nil), s.audits...),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	return c
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		state:  storeState{}.clone(),
		faults: make(map[string]error),
	}
}

// Fail makes method return err until cleared with a nil err.
func (s *Store) Fail(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, method)
		return
	}
	s.faults[method] = err
}

func (s *Store) fault(method string) error {
	return s.faults[method]
}

// PutAccount stores a copy of a directly, bypassing validation.
func (s *Store) PutAccount(a *domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.accounts[a.ID] = *a
}

// PutTransaction stores a copy of t directly, bypassing reconciliation.
func (s *Store) PutTransaction(t *domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.transactions[t.ID] = *t
}

// Account returns a copy of the stored account, or nil.
func (s *Store) Account(id string) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.state.accounts[id]
	if !ok {
		return nil
	}
	return &a
}

// Transaction returns a copy of the stored transaction, or nil.
func (s *Store) Transaction(id string) *domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.state.transactions[id]
	if !ok {
		return nil
	}
	return &t
}

// TransactionCount returns the number of stored transactions for an account.
func (s *Store) TransactionCount(accountID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.state.transactions {
		if t.AccountID == accountID {
			n++
		}
	}
	return n
}

// Events returns the outbox events written so far.
func (s *Store) Events() []domain.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OutboxEvent(nil), s.state.events...)
}

// Audits returns the audit rows written so far.
func (s *Store) Audits() []domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditLog(nil), s.state.audits...)
}

// Begin starts a transaction. Only one may be open at a time.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("Begin"); err != nil {
		return nil, err
	}
	if s.saved != nil {
		return nil, errors.New("mocks: nested transaction")
	}
	saved := s.state.clone()
	s.saved = &saved
	return &storeTx{store: s}, nil
}

type storeTx struct {
	store *Store
	done  bool
}

func (t *storeTx) Commit(ctx context.Context) error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.done {
		return errors.New("mocks: transaction already closed")
	}
	if err := s.fault("Commit"); err != nil {
		return err
	}
	s.saved = nil
	t.done = true
	return nil
}

func (t *storeTx) Rollback(ctx context.Context) error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.done {
		return nil
	}
	s.state = *s.saved
	s.saved = nil
	t.done = true
	return nil
}

// Accounts returns the store's AccountRepository.
func (s *Store) Accounts() *AccountStore { return &AccountStore{s: s} }

// Transactions returns the store's TransactionRepository.
func (s *Store) Transactions() *TransactionStore { return &TransactionStore{s: s} }

// Outbox returns the store's OutboxRepository.
func (s *Store) Outbox() *OutboxStore { return &OutboxStore{s: s} }

// AuditLog returns the store's AuditRepository.
func (s *Store) AuditLog() *AuditStore { return &AuditStore{s: s} }

// AccountStore implements usecase.AccountRepository.
type AccountStore struct{ s *Store }

func (r *AccountStore) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("accounts.Create"); err != nil {
		return err
	}
	for _, a := range s.state.accounts {
		if a.UserID == account.UserID && a.Name == account.Name {
			return domain.ErrDuplicateAccountName
		}
	}
	s.state.accounts[account.ID] = *account
	return nil
}

func (r *AccountStore) get(method, id, userID string) (*domain.Account, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(method); err != nil {
		return nil, err
	}
	a, ok := s.state.accounts[id]
	if !ok || a.UserID != userID {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

func (r *AccountStore) GetByID(ctx context.Context, tx usecase.Transaction, id, userID string) (*domain.Account, error) {
	return r.get("accounts.GetByID", id, userID)
}

func (r *AccountStore) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id, userID string) (*domain.Account, error) {
	return r.get("accounts.GetByIDForUpdate", id, userID)
}

func (r *AccountStore) ListByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("accounts.ListByUser"); err != nil {
		return nil, err
	}
	var out []*domain.Account
	for _, a := range s.state.accounts {
		if a.UserID == userID {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *AccountStore) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("accounts.Update"); err != nil {
		return err
	}
	existing, ok := s.state.accounts[account.ID]
	if !ok || existing.UserID != account.UserID {
		return domain.ErrAccountNotFound
	}
	for _, a := range s.state.accounts {
		if a.ID != account.ID && a.UserID == account.UserID && a.Name == account.Name {
			return domain.ErrDuplicateAccountName
		}
	}
	s.state.accounts[account.ID] = *account
	return nil
}

func (r *AccountStore) UpdateBalance(
	ctx context.Context,
	tx usecase.Transaction,
	id, userID string,
	balance decimal.Decimal,
	lastActivity *time.Time,
	updatedAt time.Time,
) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("accounts.UpdateBalance"); err != nil {
		return err
	}
	a, ok := s.state.accounts[id]
	if !ok || a.UserID != userID {
		return domain.ErrAccountNotFound
	}
	a.Balance = balance
	a.LastActivity = lastActivity
	a.UpdatedAt = updatedAt
	s.state.accounts[id] = a
	return nil
}

func (r *AccountStore) Delete(ctx context.Context, tx usecase.Transaction, id, userID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("accounts.Delete"); err != nil {
		return err
	}
	a, ok := s.state.accounts[id]
	if !ok || a.UserID != userID {
		return domain.ErrAccountNotFound
	}
	delete(s.state.accounts, id)
	for tid, t := range s.state.transactions {
		if t.AccountID == id {
			delete(s.state.transactions, tid)
		}
	}
	return nil
}

// TransactionStore implements usecase.TransactionRepository.
type TransactionStore struct{ s *Store }

func (r *TransactionStore) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("transactions.Create"); err != nil {
		return err
	}
	if _, ok := s.state.accounts[t.AccountID]; !ok {
		return domain.ErrAccountNotFound
	}
	s.state.transactions[t.ID] = *t
	return nil
}

func (r *TransactionStore) GetByID(ctx context.Context, tx usecase.Transaction, id, userID string) (*domain.Transaction, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("transactions.GetByID"); err != nil {
		return nil, err
	}
	t, ok := s.state.transactions[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	return &t, nil
}

func (r *TransactionStore) Update(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("transactions.Update"); err != nil {
		return err
	}
	existing, ok := s.state.transactions[t.ID]
	if !ok || existing.UserID != t.UserID {
		return domain.ErrTransactionNotFound
	}
	s.state.transactions[t.ID] = *t
	return nil
}

func (r *TransactionStore) Delete(ctx context.Context, tx usecase.Transaction, id, userID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("transactions.Delete"); err != nil {
		return err
	}
	t, ok := s.state.transactions[id]
	if !ok || t.UserID != userID {
		return domain.ErrTransactionNotFound
	}
	delete(s.state.transactions, id)
	return nil
}

func (r *TransactionStore) List(ctx context.Context, f domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("transactions.List"); err != nil {
		return nil, 0, err
	}

	var matched []*domain.Transaction
	for _, t := range s.state.transactions {
		if !matchesFilter(t, f) {
			continue
		}
		t := t
		if a, ok := s.state.accounts[t.AccountID]; ok {
			t.Account = a.Ref()
		}
		matched = append(matched, &t)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Date.Equal(matched[j].Date) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].Date.After(matched[j].Date)
	})

	total := int64(len(matched))
	start := f.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if f.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func matchesFilter(t domain.Transaction, f domain.TransactionFilter) bool {
	switch {
	case t.UserID != f.UserID:
		return false
	case f.AccountID != "" && t.AccountID != f.AccountID:
		return false
	case f.Type != "" && t.Type != f.Type:
		return false
	case f.Category != "" && (t.Category == nil || *t.Category != f.Category):
		return false
	case f.Search != "" && (t.Description == nil ||
		!strings.Contains(strings.ToLower(*t.Description), strings.ToLower(f.Search))):
		return false
	case f.From != nil && t.Date.Before(*f.From):
		return false
	case f.To != nil && t.Date.After(*f.To):
		return false
	}
	return true
}

func (r *TransactionStore) ListBetween(ctx context.Context, accountID, userID string, from, to time.Time) ([]*domain.Transaction, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("transactions.ListBetween"); err != nil {
		return nil, err
	}
	var out []*domain.Transaction
	for _, t := range s.state.transactions {
		if t.AccountID == accountID && t.UserID == userID && !t.Date.Before(from) && t.Date.Before(to) {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *TransactionStore) SumByType(ctx context.Context, tx usecase.Transaction, f domain.AggregateFilter) (domain.TypeTotals, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := domain.TypeTotals{}
	if err := s.fault("transactions.SumByType"); err != nil {
		return totals, err
	}
	for _, t := range s.state.transactions {
		if t.UserID != f.UserID || (f.AccountID != "" && t.AccountID != f.AccountID) {
			continue
		}
		if f.From != nil && t.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && !t.Date.Before(*f.To) {
			continue
		}
		totals.Add(t.Type, t.Amount, 1)
	}
	return totals, nil
}

func (r *TransactionStore) LatestDate(ctx context.Context, tx usecase.Transaction, accountID, userID string) (*time.Time, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("transactions.LatestDate"); err != nil {
		return nil, err
	}
	var latest *time.Time
	for _, t := range s.state.transactions {
		if t.AccountID != accountID || t.UserID != userID {
			continue
		}
		if latest == nil || t.Date.After(*latest) {
			d := t.Date
			latest = &d
		}
	}
	return latest, nil
}

func (r *TransactionStore) CurrencyUsage(ctx context.Context, userID string, from, to time.Time) ([]domain.CurrencyUsage, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("transactions.CurrencyUsage"); err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for _, t := range s.state.transactions {
		if t.UserID != userID || t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}
		if a, ok := s.state.accounts[t.AccountID]; ok {
			counts[a.Currency]++
		}
	}
	out := make([]domain.CurrencyUsage, 0, len(counts))
	for c, n := range counts {
		out = append(out, domain.CurrencyUsage{Currency: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

// OutboxStore implements usecase.OutboxRepository.
type OutboxStore struct{ s *Store }

func (r *OutboxStore) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("outbox.Create"); err != nil {
		return err
	}
	s.state.events = append(s.state.events, *event)
	return nil
}

func (r *OutboxStore) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("outbox.GetUnpublished"); err != nil {
		return nil, err
	}
	var out []*domain.OutboxEvent
	for _, e := range s.state.events {
		if !e.Published && len(out) < limit {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *OutboxStore) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("outbox.MarkPublished"); err != nil {
		return err
	}
	for i := range s.state.events {
		if s.state.events[i].ID == id {
			s.state.events[i].Published = true
			s.state.events[i].PublishedAt = &publishedAt
		}
	}
	return nil
}

// AuditStore implements usecase.AuditRepository.
type AuditStore struct{ s *Store }

func (r *AuditStore) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("audit.CreateTx"); err != nil {
		return err
	}
	s.state.audits = append(s.state.audits, *log)
	return nil
}

func (r *AuditStore) ListByResource(ctx context.Context, userID, resourceType, resourceID string, limit int) ([]*domain.AuditLog, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.AuditLog
	for i := len(s.state.audits) - 1; i >= 0 && len(out) < limit; i-- {
		l := s.state.audits[i]
		if l.UserID == userID && l.ResourceType == resourceType && l.ResourceID == resourceID {
			out = append(out, &l)
		}
	}
	return out, nil
}

var (
	_ usecase.TransactionManager    = (*Store)(nil)
	_ usecase.AccountRepository     = (*AccountStore)(nil)
	_ usecase.TransactionRepository = (*TransactionStore)(nil)
	_ usecase.OutboxRepository      = (*OutboxStore)(nil)
	_ usecase.AuditRepository       = (*AuditStore)(nil)
)
