package sqlite

import "github.com/jmoiron/sqlx"

// schema sets up the database. It runs on startup to ensure tables exist.
//
// users mirrors the identity collaborator's records. votes is the ledger;
// the UNIQUE and CHECK constraints back up the checks InsertVote performs
// inside its write transaction.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'employee' CHECK (role IN ('admin', 'hr', 'leader', 'employee')),
    group_name TEXT NOT NULL DEFAULT 'General',
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    from_user TEXT NOT NULL,
    to_user TEXT NOT NULL,
    month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
    year INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'approved' CHECK (status IN ('pending', 'approved', 'rejected')),
    message TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    CHECK (from_user <> to_user),
    UNIQUE (from_user, to_user, month, year)
);

CREATE INDEX IF NOT EXISTS idx_votes_from_period ON votes(from_user, year, month);
CREATE INDEX IF NOT EXISTS idx_votes_to_period ON votes(to_user, year, month, status);
CREATE INDEX IF NOT EXISTS idx_votes_period_status ON votes(year, month, status);
CREATE INDEX IF NOT EXISTS idx_users_status ON users(status, name);
`

// runMigrations executes the schema setup.
func runMigrations(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	return err
}
