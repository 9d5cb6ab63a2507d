package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
)

type accountServiceStub struct {
	createFn  func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn     func(ctx context.Context, id string) (*domain.Account, error)
	listFn    func(ctx context.Context, parentID string) ([]*domain.Account, error)
	updateFn  func(ctx context.Context, input usecase.UpdateSettingsInput) (*domain.Account, error)
	deleteFn  func(ctx context.Context, input usecase.DeleteAccountInput) error
	liveFn    func(ctx context.Context, id string, now time.Time) (*usecase.LiveBalance, error)
	projectFn func(ctx context.Context, id string, days int) (*usecase.Projection, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, parentID string) ([]*domain.Account, error) {
	return s.listFn(ctx, parentID)
}

func (s *accountServiceStub) UpdateSettings(ctx context.Context, input usecase.UpdateSettingsInput) (*domain.Account, error) {
	return s.updateFn(ctx, input)
}

func (s *accountServiceStub) DeleteAccount(ctx context.Context, input usecase.DeleteAccountInput) error {
	return s.deleteFn(ctx, input)
}

func (s *accountServiceStub) GetLiveBalance(ctx context.Context, id string, now time.Time) (*usecase.LiveBalance, error) {
	return s.liveFn(ctx, id, now)
}

func (s *accountServiceStub) ProjectBalance(ctx context.Context, id string, days int) (*usecase.Projection, error) {
	return s.projectFn(ctx, id, days)
}

// ownedAccounts serves a single account owned by parent-1.
func ownedAccounts(account *domain.Account) *accountServiceStub {
	return &accountServiceStub{getFn: func(ctx context.Context, id string) (*domain.Account, error) {
		if id != account.ID {
			return nil, domain.ErrAccountNotFound
		}
		return account, nil
	}}
}

type ledgerServiceStub struct {
	depositFn  func(ctx context.Context, input usecase.DepositInput) (*domain.LedgerEntry, error)
	withdrawFn func(ctx context.Context, input usecase.WithdrawInput) (*domain.LedgerEntry, error)
	resolveFn  func(ctx context.Context, input usecase.ResolveInput) (*domain.LedgerEntry, error)
}

func (s *ledgerServiceStub) Deposit(ctx context.Context, input usecase.DepositInput) (*domain.LedgerEntry, error) {
	return s.depositFn(ctx, input)
}

func (s *ledgerServiceStub) Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.LedgerEntry, error) {
	return s.withdrawFn(ctx, input)
}

func (s *ledgerServiceStub) ResolvePending(ctx context.Context, input usecase.ResolveInput) (*domain.LedgerEntry, error) {
	return s.resolveFn(ctx, input)
}

type entryServiceStub struct {
	listFn     func(ctx context.Context, input usecase.GetEntriesByAccountInput) ([]*domain.LedgerEntry, error)
	getFn      func(ctx context.Context, id string) (*domain.LedgerEntry, error)
	pendingFn  func(ctx context.Context, parentID string) (*usecase.PendingSummary, error)
	interestFn func(ctx context.Context, accountID string, now time.Time) (*usecase.InterestSummary, error)
}

func (s *entryServiceStub) GetEntriesByAccount(ctx context.Context, input usecase.GetEntriesByAccountInput) ([]*domain.LedgerEntry, error) {
	return s.listFn(ctx, input)
}

func (s *entryServiceStub) GetEntry(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	return s.getFn(ctx, id)
}

func (s *entryServiceStub) ListPending(ctx context.Context, parentID string) (*usecase.PendingSummary, error) {
	return s.pendingFn(ctx, parentID)
}

func (s *entryServiceStub) GetInterestSummary(ctx context.Context, accountID string, now time.Time) (*usecase.InterestSummary, error) {
	return s.interestFn(ctx, accountID, now)
}

func parent(id string) *domain.Caller {
	return &domain.Caller{ID: id, Role: domain.RoleParent}
}

func child(accountID string) *domain.Caller {
	return &domain.Caller{ID: "child-" + accountID, Role: domain.RoleChild, AccountID: accountID}
}

func withCaller(r *http.Request, caller *domain.Caller) *http.Request {
	return r.WithContext(domain.WithCaller(r.Context(), caller))
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}
