// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mmynk/kudos/internal/models"
	"github.com/mmynk/kudos/internal/storage"
	"github.com/mmynk/kudos/internal/storage/sqlstore"
)

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

// See https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

// PostgresStore implements storage.Store using PostgreSQL.
//
// Quota is guarded by a counter row per (from_user, month, year). The row is
// bumped with a conditional upsert in the same transaction as the vote
// insert, so concurrent voters serialize on the row lock and a failed insert
// rolls the counter back.
type PostgresStore struct {
	sqlstore.Base
}

// New connects to PostgreSQL and runs migrations.
func New(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{Base: sqlstore.Base{DB: db, SeqColumn: "seq"}}, nil
}

// InsertVote records a vote if the voter has quota left and has not voted
// for the same recipient in the period.
func (s *PostgresStore) InsertVote(ctx context.Context, vote *models.Vote, quota int) error {
	if err := storage.PrepareVote(vote, quota); err != nil {
		return err
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var used int
	err = tx.GetContext(ctx, &used, `
		INSERT INTO vote_quota (from_user, month, year, used)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (from_user, month, year)
		DO UPDATE SET used = vote_quota.used + 1
		WHERE vote_quota.used < $4
		RETURNING used
	`, vote.FromUser, vote.Month, vote.Year, quota)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrQuotaExceeded
	}
	if err != nil {
		return fmt.Errorf("failed to reserve quota: %w", err)
	}

	// The counter row lock is held until commit, so no other vote from this
	// voter can land between this check and the insert. Returning rolls the
	// reservation back.
	exists, err := s.VoteExists(ctx, tx, vote)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrDuplicateVote
	}

	if err := s.InsertRow(ctx, tx, vote); err != nil {
		return castErr(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// castErr replaces constraint violations with the matching ledger error.
func castErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return models.ErrDuplicateVote
		case checkViolation:
			return models.ErrSelfVote
		}
	}
	return fmt.Errorf("failed to insert vote: %w", err)
}
