package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/growbucks/internal/adapter/http/dto"
	"github.com/iho/growbucks/internal/app"
	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/infrastructure/auth"
	"github.com/iho/growbucks/internal/infrastructure/config"
	"github.com/iho/growbucks/internal/infrastructure/logger"
	"github.com/iho/growbucks/internal/infrastructure/postgres"
)

var timeout time.Duration

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "growbucks-cli",
		Short:         "GrowBucks operations tool",
		Long:          `Runs maintenance tasks against the GrowBucks database: migrations, interest accrual and reconciliation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall command timeout")

	rootCmd.AddCommand(migrateCmd(), accrualCmd(), reconcileCmd(), tokenCmd())
	return rootCmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, err := loadConfig()
				if err != nil {
					return err
				}
				return postgres.RunMigrations(cfg.DatabaseURL, log)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, err := loadConfig()
				if err != nil {
					return err
				}
				return postgres.RunMigrationsDown(cfg.DatabaseURL, log)
			},
		},
	)

	return cmd
}

func accrualCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accrual",
		Short: "Interest accrual",
	}

	var at string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the daily accrual now",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseAsOf(at, time.Now())
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				result, err := a.Accrual.RunDailyAccrual(ctx, now)
				if result != nil {
					printJSON(cmd.OutOrStdout(), dto.AccrualRunFromUseCase(result))
				}
				return err
			})
		},
	}
	runCmd.Flags().StringVar(&at, "as-of", "", "Accrue as of this RFC 3339 time instead of now")

	var limit int
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent accrual runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				runs, err := a.Accrual.ListRuns(ctx, limit)
				if err != nil {
					return err
				}
				printJSON(cmd.OutOrStdout(), dto.InterestRunsFromDomain(runs))
				return nil
			})
		},
	}
	runsCmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to show")

	cmd.AddCommand(runCmd, runsCmd)
	return cmd
}

func reconcileCmd() *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Check balances against the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if accountID != "" {
					result, err := a.Reconciliation.ReconcileAccount(ctx, accountID)
					if err != nil {
						return err
					}
					printJSON(cmd.OutOrStdout(), dto.ReconciliationFromUseCase(result))
					if !result.IsReconciled {
						return fmt.Errorf("account %s is not reconciled", accountID)
					}
					return nil
				}

				report, err := a.Reconciliation.GenerateReconciliationReport(ctx)
				if err != nil {
					return err
				}
				printJSON(cmd.OutOrStdout(), dto.ReconciliationReportFromUseCase(report))
				if !report.LedgerConsistent || len(report.Discrepancies) > 0 {
					return fmt.Errorf("%d discrepancies found", len(report.Discrepancies))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "Reconcile a single account")

	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		callerID  string
		role      string
		accountID string
		ttl       time.Duration
		secret    string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}

			caller := &domain.Caller{ID: callerID, Role: domain.Role(role), AccountID: accountID}
			if caller.Role == domain.RoleChild && caller.AccountID == "" {
				return fmt.Errorf("--account is required for child tokens")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(caller)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&callerID, "id", "", "Caller ID (token subject)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleParent), "Caller role: parent or child")
	cmd.Flags().StringVar(&accountID, "account", "", "Account a child token is bound to")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (defaults to JWT_SECRET)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load configuration: %w", err)
	}

	return cfg, logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Format: "console"}, os.Stderr), nil
}

func withApp(parent context.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	// Maintenance commands work on the database and never need the cache.
	cfg.StorageBackend = config.StoragePostgres
	cfg.RedisURL = ""

	a, err := app.New(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func parseAsOf(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: %w", value, err)
	}
	return t, nil
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(w, "failed to encode output: %v\n", err)
	}
}
