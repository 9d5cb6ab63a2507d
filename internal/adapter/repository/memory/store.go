// Package memory implements the repositories in process. Row locks are per-key
// semaphores held until the transaction ends, and writes are staged on the transaction
// and applied on commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
)

// DefaultLockTimeout bounds how long a transaction waits for a row lock.
const DefaultLockTimeout = 2 * time.Second

var errForeignTx = errors.New("memory: transaction not created by this store")

// Store holds all committed state.
type Store struct {
	mu          sync.RWMutex
	accounts    map[string]*domain.Account
	entries     map[string]*domain.LedgerEntry
	entryOrder  []string
	outbox      []*domain.OutboxEvent
	runs        []*domain.InterestRun
	locks       map[string]chan struct{}
	lockTimeout time.Duration
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:    make(map[string]*domain.Account),
		entries:     make(map[string]*domain.LedgerEntry),
		locks:       make(map[string]chan struct{}),
		lockTimeout: DefaultLockTimeout,
	}
}

// WithLockTimeout overrides DefaultLockTimeout.
func (s *Store) WithLockTimeout(d time.Duration) *Store {
	if d > 0 {
		s.lockTimeout = d
	}
	return s
}

func (s *Store) lockChan(key string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

// Tx stages writes and holds row locks until Commit or Rollback.
type Tx struct {
	store    *Store
	held     map[string]chan struct{}
	accounts map[string]*domain.Account
	entries  map[string]*domain.LedgerEntry
	created  []string
	outbox   []*domain.OutboxEvent
	done     bool
}

// lock acquires the row lock for key, waiting at most the store's lock timeout.
func (tx *Tx) lock(ctx context.Context, key string) error {
	if _, ok := tx.held[key]; ok {
		return nil
	}

	ch := tx.store.lockChan(key)

	timer := time.NewTimer(tx.store.lockTimeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		tx.held[key] = ch
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for %s: %w", domain.ErrConcurrencyConflict, key, ctx.Err())
	case <-timer.C:
		return fmt.Errorf("%w: lock timeout on %s", domain.ErrConcurrencyConflict, key)
	}
}

func (tx *Tx) release() {
	for key, ch := range tx.held {
		<-ch
		delete(tx.held, key)
	}
	tx.done = true
}

// Commit applies the staged writes and releases the locks.
func (tx *Tx) Commit(_ context.Context) error {
	if tx.done {
		return errors.New("memory: transaction already closed")
	}
	defer tx.release()

	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range tx.accounts {
		s.accounts[id] = a
	}
	for id, e := range tx.entries {
		s.entries[id] = e
	}
	s.entryOrder = append(s.entryOrder, tx.created...)
	s.outbox = append(s.outbox, tx.outbox...)

	return nil
}

// Rollback discards the staged writes. It is a no-op after Commit.
func (tx *Tx) Rollback(_ context.Context) error {
	if tx.done {
		return nil
	}
	tx.release()
	return nil
}

func (tx *Tx) account(id string) (*domain.Account, bool) {
	if a, ok := tx.accounts[id]; ok {
		return a, true
	}

	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()

	a, ok := tx.store.accounts[id]
	if !ok {
		return nil, false
	}
	return cloneAccount(a), true
}

func (tx *Tx) entry(id string) (*domain.LedgerEntry, bool) {
	if e, ok := tx.entries[id]; ok {
		return e, true
	}

	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()

	e, ok := tx.store.entries[id]
	if !ok {
		return nil, false
	}
	return cloneEntry(e), true
}

// TxManager begins memory transactions.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{
		store:    m.store,
		held:     make(map[string]chan struct{}),
		accounts: make(map[string]*domain.Account),
		entries:  make(map[string]*domain.LedgerEntry),
	}, nil
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.done {
		return nil, errForeignTx
	}
	return t, nil
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	if a.DeletedAt != nil {
		d := *a.DeletedAt
		c.DeletedAt = &d
	}
	return &c
}

func cloneEntry(e *domain.LedgerEntry) *domain.LedgerEntry {
	c := *e
	if e.ProcessedAt != nil {
		p := *e.ProcessedAt
		c.ProcessedAt = &p
	}
	return &c
}
