package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	postgresRepo "github.com/iho/fintrack/internal/adapter/repository/postgres"
	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/auth"
	"github.com/iho/fintrack/internal/infrastructure/logger"
	"github.com/iho/fintrack/internal/infrastructure/postgres"
	"github.com/iho/fintrack/internal/usecase"
)

// Swapped in tests.
var (
	migrateUp       = postgres.RunMigrations
	migrateDown     = postgres.RunMigrationsDown
	reconcileAllFor = reconcileAllInDatabase
)

func migrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", envOr("MIGRATIONS_PATH", "migrations"), "Directory holding the migration files")

	run := func(fn func(string, string, zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errors.New("a database URL is required (--database-url or DATABASE_URL)")
			}
			log := logger.New(logger.Config{Level: "info", Format: "console", Output: cmd.ErrOrStderr()})
			return fn(databaseURL, migrationsPath, log)
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", Args: cobra.NoArgs, RunE: run(migrateUp)},
		&cobra.Command{Use: "down", Short: "Roll back the last migration", Args: cobra.NoArgs, RunE: run(migrateDown)},
	)
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		secret string
		user   domain.User
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for a user, for development and operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("a signing secret is required (--secret or JWT_SECRET)")
			}
			token, err := auth.NewJWTManager(secret).Generate(&user, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC signing secret")
	cmd.Flags().StringVar(&user.ID, "user", "", "User id (token subject)")
	cmd.Flags().StringVar(&user.Email, "email", "", "User email")
	cmd.Flags().StringVar(&user.Name, "name", "", "User display name")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func reconcileCmd(opts *options) *cobra.Command {
	var (
		all         bool
		userID      string
		databaseURL string
	)

	cmd := &cobra.Command{
		Use:   "reconcile [account-id]",
		Short: "Recompute account balances from their transactions",
		Long: `Recompute an account balance through the API, or with --all repair every
account of --user directly against the database.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				if userID == "" || databaseURL == "" {
					return errors.New("--all needs --user and a database URL")
				}
				report, err := reconcileAllFor(cmd.Context(), databaseURL, userID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), dto.ReconciliationReportFromUseCase(report))
			}

			if len(args) != 1 {
				return errors.New("an account id is required unless --all is set")
			}
			client, err := newAPIClient(opts)
			if err != nil {
				return err
			}

			var result dto.ReconciliationResponse
			if err := client.do(cmd.Context(), http.MethodPost, "/api/accounts/"+url.PathEscape(args[0])+"/reconcile", nil, &result); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Reconcile every account of --user")
	cmd.Flags().StringVar(&userID, "user", "", "Owner of the accounts for --all")
	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL for --all")
	return cmd
}

func reconcileAllInDatabase(ctx context.Context, databaseURL, userID string) (*usecase.ReconciliationReport, error) {
	pool, err := postgres.NewPool(ctx, databaseURL, 2, 0)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	reconciler := usecase.NewReconciliationUseCase(
		postgresRepo.NewTxManager(pool),
		postgresRepo.NewAccountRepository(pool),
		postgresRepo.NewTransactionRepository(pool),
		postgresRepo.NewOutboxRepository(pool),
		postgresRepo.NewAuditRepository(pool),
		postgresRepo.NewULIDGenerator(),
		domain.DefaultPolicy(),
		nil,
	)
	return reconciler.ReconcileAll(ctx, userID)
}
