package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS users (
        id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        email         TEXT NOT NULL,
        password_hash TEXT NOT NULL,
        name          TEXT NOT NULL DEFAULT '',
        company       TEXT NOT NULL DEFAULT '',
        plan          TEXT NOT NULL DEFAULT 'free'
                      CHECK (plan IN ('free', 'bronze', 'silver', 'gold', 'platinum')),
        credits       INTEGER NOT NULL DEFAULT 5 CHECK (credits >= 0),
        role          TEXT NOT NULL DEFAULT 'user',
        last_login    TIMESTAMPTZ,
        created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        CONSTRAINT users_email_key UNIQUE (email)
    )`,
	`CREATE TABLE IF NOT EXISTS leads (
        id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        user_id           UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        company           TEXT NOT NULL,
        website           TEXT NOT NULL DEFAULT '',
        linkedin          TEXT NOT NULL DEFAULT '',
        email             TEXT NOT NULL DEFAULT '',
        phone             TEXT NOT NULL DEFAULT '',
        industry          TEXT NOT NULL DEFAULT '',
        business_type     TEXT NOT NULL DEFAULT '',
        employee_count    TEXT NOT NULL DEFAULT '',
        revenue           TEXT NOT NULL DEFAULT '',
        year_founded      TEXT NOT NULL DEFAULT '',
        bbb_rating        TEXT NOT NULL DEFAULT '',
        street            TEXT NOT NULL DEFAULT '',
        city              TEXT NOT NULL DEFAULT '',
        state             TEXT NOT NULL DEFAULT '',
        zip_code          TEXT NOT NULL DEFAULT '',
        country           TEXT NOT NULL DEFAULT 'USA',
        products_services TEXT[] NOT NULL DEFAULT '{}',
        description       TEXT NOT NULL DEFAULT '',
        status            TEXT NOT NULL DEFAULT 'new'
                          CHECK (status IN ('new', 'contacted', 'qualified', 'converted', 'closed')),
        notes             TEXT NOT NULL DEFAULT '',
        last_contacted    TIMESTAMPTZ,
        created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS leads_user_created_idx ON leads (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS leads_user_status_idx ON leads (user_id, status)`,
}

// Migrate creates the tables when they are missing. It is safe to run on every start.
func Migrate(ctx context.Context, db Execer) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
