// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/kudos/internal/models"
	"github.com/mmynk/kudos/internal/storage"
	"github.com/mmynk/kudos/internal/storage/sqlstore"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLiteStore implements storage.Store using SQLite.
//
// Every transaction starts with BEGIN IMMEDIATE, so a writer holds the
// database write lock from its first read. That makes the quota count, the
// duplicate check and the insert in InsertVote one serialized unit.
type SQLiteStore struct {
	sqlstore.Base
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := "file:" + dbPath +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(10000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_txlock=immediate"

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{Base: sqlstore.Base{DB: db, SeqColumn: "rowid"}}, nil
}

// InsertVote records a vote if the voter has quota left and has not voted
// for the same recipient in the period.
func (s *SQLiteStore) InsertVote(ctx context.Context, vote *models.Vote, quota int) error {
	if err := storage.PrepareVote(vote, quota); err != nil {
		return err
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cast, err := s.CountCast(ctx, tx, vote.FromUser, vote.Period())
	if err != nil {
		return err
	}
	if cast >= quota {
		return models.ErrQuotaExceeded
	}

	exists, err := s.VoteExists(ctx, tx, vote)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrDuplicateVote
	}

	if err := s.InsertRow(ctx, tx, vote); err != nil {
		if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE) || isConstraint(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY) {
			return models.ErrDuplicateVote
		}
		if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_CHECK) {
			return models.ErrSelfVote
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// isConstraint reports whether err is a SQLite error with the given
// extended result code.
func isConstraint(err error, code int) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == code
	}
	return false
}
