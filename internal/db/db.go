package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/logger"
)

var Conn *pgxpool.Pool

// Init connects to Postgres and ensures the schema is in place.
func Init(databaseURL string) {
	var err error
	Conn, err = pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		logger.Log.Fatal("unable to connect to database", zap.Error(err))
	}

	if err = Conn.Ping(context.Background()); err != nil {
		logger.Log.Fatal("unable to ping database", zap.Error(err))
	}

	logger.Log.Info("connected to Postgres")

	EnsureSchema(context.Background(), Conn)
}

// EnsureSchema creates the tables the handlers rely on. Statements are
// idempotent so repeated boots are safe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) {
	ensureUsersTable(ctx, pool)
	ensureTasksTable(ctx, pool)
	ensureSubmissionsTable(ctx, pool)
	ensurePaymentsTable(ctx, pool)
	ensureWithdrawalsTable(ctx, pool)
	ensureNotificationsTable(ctx, pool)
}

func ensureUsersTable(ctx context.Context, pool *pgxpool.Pool) {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            image_url TEXT,
            role TEXT NOT NULL DEFAULT 'worker' CHECK (role IN ('buyer','worker','admin')),
            coins BIGINT NOT NULL DEFAULT 0 CHECK (coins >= 0),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		logger.Log.Error("failed to ensure users table", zap.Error(err))
	}
}

func ensureTasksTable(ctx context.Context, pool *pgxpool.Pool) {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS tasks (
            id UUID PRIMARY KEY,
            buyer_email TEXT NOT NULL,
            buyer_name TEXT NOT NULL,
            title TEXT NOT NULL,
            detail TEXT,
            required_workers INTEGER NOT NULL CHECK (required_workers >= 0),
            payable_amount BIGINT NOT NULL CHECK (payable_amount > 0),
            completion_date TIMESTAMP WITH TIME ZONE,
            submission_info TEXT,
            image_url TEXT,
            status TEXT NOT NULL DEFAULT 'active',
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_tasks_buyer ON tasks(buyer_email);
        CREATE INDEX IF NOT EXISTS idx_tasks_open ON tasks(required_workers) WHERE required_workers > 0;
    `)
	if err != nil {
		logger.Log.Error("failed to ensure tasks table", zap.Error(err))
	}
}

func ensureSubmissionsTable(ctx context.Context, pool *pgxpool.Pool) {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS submissions (
            id UUID PRIMARY KEY,
            task_id UUID NOT NULL,
            task_title TEXT NOT NULL,
            payable_amount BIGINT NOT NULL,
            worker_email TEXT NOT NULL,
            worker_name TEXT NOT NULL,
            buyer_email TEXT NOT NULL,
            buyer_name TEXT NOT NULL,
            details TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','approved','rejected')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_submissions_worker ON submissions(worker_email);
        CREATE INDEX IF NOT EXISTS idx_submissions_buyer_pending ON submissions(buyer_email) WHERE status = 'pending';
    `)
	if err != nil {
		logger.Log.Error("failed to ensure submissions table", zap.Error(err))
	}
}

func ensurePaymentsTable(ctx context.Context, pool *pgxpool.Pool) {
	// payment_intent_id UNIQUE is the duplicate-confirmation guard; a second
	// confirm for the same intent fails at the storage layer instead of a
	// check-then-insert race.
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS payments (
            id UUID PRIMARY KEY,
            email TEXT NOT NULL,
            coins BIGINT NOT NULL,
            amount BIGINT NOT NULL,
            payment_intent_id TEXT NOT NULL UNIQUE,
            method TEXT NOT NULL DEFAULT 'stripe',
            status TEXT NOT NULL DEFAULT 'success',
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_payments_email ON payments(email);
    `)
	if err != nil {
		logger.Log.Error("failed to ensure payments table", zap.Error(err))
	}
}

func ensureWithdrawalsTable(ctx context.Context, pool *pgxpool.Pool) {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS withdrawals (
            id UUID PRIMARY KEY,
            worker_email TEXT NOT NULL,
            worker_name TEXT NOT NULL,
            coins BIGINT NOT NULL CHECK (coins > 0),
            amount NUMERIC(12,2) NOT NULL,
            payment_system TEXT NOT NULL,
            account_number TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','approved')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_withdrawals_worker ON withdrawals(worker_email);
        CREATE INDEX IF NOT EXISTS idx_withdrawals_pending ON withdrawals(status) WHERE status = 'pending';
    `)
	if err != nil {
		logger.Log.Error("failed to ensure withdrawals table", zap.Error(err))
	}
}

func ensureNotificationsTable(ctx context.Context, pool *pgxpool.Pool) {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY,
            email TEXT NOT NULL,
            message TEXT NOT NULL,
            action_route TEXT,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_notifications_email_created ON notifications(email, created_at);
    `)
	if err != nil {
		logger.Log.Error("failed to ensure notifications table", zap.Error(err))
	}
}
