package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/iho/growbucks/internal/app"
	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/infrastructure/config"
	"github.com/iho/growbucks/internal/infrastructure/postgres"
	"github.com/iho/growbucks/internal/usecase"
)

// TestDB provides a migrated PostgreSQL database for integration tests.
type TestDB struct {
	Pool *pgxpool.Pool
	URL  string
	t    *testing.T
}

// NewTestDB connects to DATABASE_URL and applies migrations. The test is skipped
// when no database is configured.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := postgres.RunMigrations(dbURL, zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbURL, 20, 2)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	return &TestDB{Pool: pool, URL: dbURL, t: t}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE outbox_events, interest_runs, ledger_entries, accounts CASCADE;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// NewApp wires the full application against the test database without Redis.
func (db *TestDB) NewApp(ctx context.Context) *app.App {
	db.t.Helper()

	db.t.Setenv("DATABASE_URL", db.URL)
	db.t.Setenv("REDIS_URL", "")

	cfg, err := config.Load()
	if err != nil {
		db.t.Fatalf("failed to load config: %v", err)
	}

	a, err := app.New(ctx, cfg, zerolog.Nop(), nil)
	if err != nil {
		db.t.Fatalf("failed to build app: %v", err)
	}
	db.t.Cleanup(a.Close)

	return a
}

// CreateFundedAccount creates an account for parentID and deposits balance cents.
func CreateFundedAccount(t *testing.T, ctx context.Context, a *app.App, parentID string, balance int64) *domain.Account {
	t.Helper()

	account, err := a.Accounts.CreateAccount(ctx, usecase.CreateAccountInput{ParentID: parentID, Name: "Savings " + GenerateID()[:6]})
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	if balance > 0 {
		if _, err := a.Ledger.Deposit(ctx, usecase.DepositInput{AccountID: account.ID, Amount: balance, CallerID: parentID}); err != nil {
			t.Fatalf("failed to fund account: %v", err)
		}
	}

	funded, err := a.Accounts.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	return funded
}

// BackdateAccrual moves an account's accrual marker back by days.
func (db *TestDB) BackdateAccrual(ctx context.Context, accountID string, days int) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx,
		`UPDATE accounts SET last_accrual_at = last_accrual_at - make_interval(days => $2) WHERE id = $1`,
		accountID, days)
	if err != nil {
		db.t.Fatalf("failed to backdate accrual: %v", err)
	}
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
