package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is safe to apply multiple times - uses IF NOT EXISTS.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'employee' CHECK (role IN ('admin', 'hr', 'leader', 'employee')),
    group_name TEXT NOT NULL DEFAULT 'General',
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_status ON users(status, name);

-- Ledger
CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    from_user TEXT NOT NULL,
    to_user TEXT NOT NULL,
    month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
    year INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'approved' CHECK (status IN ('pending', 'approved', 'rejected')),
    message TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL,
    seq BIGSERIAL,
    CONSTRAINT votes_no_self_vote CHECK (from_user <> to_user),
    CONSTRAINT votes_one_per_recipient UNIQUE (from_user, to_user, month, year)
);

-- Tables created before insertion order was tracked.
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM information_schema.columns
        WHERE table_schema = current_schema() AND table_name = 'votes' AND column_name = 'seq'
    ) THEN
        ALTER TABLE votes ADD COLUMN seq BIGSERIAL;
    END IF;
END $$;

CREATE INDEX IF NOT EXISTS idx_votes_from_period ON votes(from_user, year, month);
CREATE INDEX IF NOT EXISTS idx_votes_to_period ON votes(to_user, year, month, status);
CREATE INDEX IF NOT EXISTS idx_votes_period_status ON votes(year, month, status);

-- Quota counters
CREATE TABLE IF NOT EXISTS vote_quota (
    from_user TEXT NOT NULL,
    month INTEGER NOT NULL,
    year INTEGER NOT NULL,
    used INTEGER NOT NULL CHECK (used >= 0),
    PRIMARY KEY (from_user, month, year)
);
`

func runMigrations(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
