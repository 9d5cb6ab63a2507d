package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

func (r *AccountRepository) Create(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if _, exists := t.account(account.ID); exists {
		return fmt.Errorf("memory: account %s already exists", account.ID)
	}

	created := cloneAccount(account)
	created.Version = 1
	account.Version = 1
	t.accounts[account.ID] = created

	return nil
}

func (r *AccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return cloneAccount(a), nil
}

func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if err := t.lock(ctx, "account:"+id); err != nil {
		return nil, err
	}

	a, ok := t.account(id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return cloneAccount(a), nil
}

func (r *AccountRepository) LockParent(ctx context.Context, tx usecase.Transaction, parentID string) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	return t.lock(ctx, "parent:"+parentID)
}

func (r *AccountRepository) CountActiveByParent(_ context.Context, tx usecase.Transaction, parentID string) (int, error) {
	t, err := asTx(tx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool)
	count := 0

	for id, a := range t.accounts {
		seen[id] = true
		if a.ParentID == parentID && !a.IsDeleted() {
			count++
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for id, a := range r.store.accounts {
		if seen[id] {
			continue
		}
		if a.ParentID == parentID && !a.IsDeleted() {
			count++
		}
	}

	return count, nil
}

func (r *AccountRepository) UpdateBalance(_ context.Context, tx usecase.Transaction, id string, balance int64, updatedAt time.Time) error {
	return r.mutate(tx, id, func(a *domain.Account) {
		a.Balance = balance
		a.UpdatedAt = updatedAt
	})
}

func (r *AccountRepository) UpdateAccrual(_ context.Context, tx usecase.Transaction, id string, balance int64, lastAccrualAt, updatedAt time.Time) error {
	return r.mutate(tx, id, func(a *domain.Account) {
		a.Balance = balance
		a.LastAccrualAt = lastAccrualAt
		a.UpdatedAt = updatedAt
	})
}

func (r *AccountRepository) UpdateSettings(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	return r.mutate(tx, account.ID, func(a *domain.Account) {
		a.Name = account.Name
		a.DailyRate = account.DailyRate
		a.InterestPaused = account.InterestPaused
		a.LastAccrualAt = account.LastAccrualAt
		a.UpdatedAt = account.UpdatedAt
	})
}

func (r *AccountRepository) SoftDelete(_ context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	return r.mutate(tx, id, func(a *domain.Account) {
		a.DeletedAt = &deletedAt
		a.UpdatedAt = deletedAt
	})
}

func (r *AccountRepository) mutate(tx usecase.Transaction, id string, fn func(*domain.Account)) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	a, ok := t.account(id)
	if !ok {
		return domain.ErrAccountNotFound
	}

	fn(a)
	a.Version++
	t.accounts[id] = a

	return nil
}

func (r *AccountRepository) ListByParent(_ context.Context, parentID string) ([]*domain.Account, error) {
	accounts := r.filter(func(a *domain.Account) bool {
		return a.ParentID == parentID && !a.IsDeleted()
	})

	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].ID < accounts[j].ID
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	return accounts, nil
}

func (r *AccountRepository) ListEligibleForAccrual(_ context.Context, asOf time.Time, afterID string, limit int) ([]*domain.Account, error) {
	accounts := r.filter(func(a *domain.Account) bool {
		return a.EligibleForAccrual() && a.LastAccrualAt.Before(asOf) && a.ID > afterID
	})

	sortByID(accounts)

	if limit > 0 && len(accounts) > limit {
		accounts = accounts[:limit]
	}

	return accounts, nil
}

func (r *AccountRepository) List(_ context.Context, limit, offset int) ([]*domain.Account, error) {
	accounts := r.filter(func(*domain.Account) bool { return true })
	sortByID(accounts)

	if offset >= len(accounts) {
		return []*domain.Account{}, nil
	}
	accounts = accounts[offset:]

	if limit > 0 && len(accounts) > limit {
		accounts = accounts[:limit]
	}

	return accounts, nil
}

func (r *AccountRepository) filter(keep func(*domain.Account) bool) []*domain.Account {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts := make([]*domain.Account, 0)
	for _, a := range r.store.accounts {
		if keep(a) {
			accounts = append(accounts, cloneAccount(a))
		}
	}

	return accounts
}

func sortByID(accounts []*domain.Account) {
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
}
