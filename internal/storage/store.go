// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/kudos/internal/models"
)

// VoteFilter selects votes. Zero-valued fields are not filtered on, so an
// empty filter matches every vote.
type VoteFilter struct {
	FromUser string
	ToUser   string
	Month    int
	Year     int
	Status   models.VoteStatus
}

// ForPeriod returns a copy of f restricted to period p.
func (f VoteFilter) ForPeriod(p models.Period) VoteFilter {
	f.Month = p.Month
	f.Year = p.Year
	return f
}

// Ledger is the vote ledger. It is the sole owner of vote records and
// enforces the ledger invariants at write time.
type Ledger interface {
	// InsertVote records a new vote. The vote.ID and vote.CreatedAt fields are
	// populated by the store when empty.
	//
	// The quota check, the duplicate check and the insert happen as a single
	// atomic operation. Returns models.ErrSelfVote if FromUser == ToUser,
	// models.ErrQuotaExceeded if the voter already cast quota votes in the
	// period, and models.ErrDuplicateVote if a vote for the same
	// (from, to, month, year) exists. Quota takes precedence over duplicate.
	InsertVote(ctx context.Context, vote *models.Vote, quota int) error

	// CountVotes returns the number of votes matching the filter.
	CountVotes(ctx context.Context, filter VoteFilter) (int, error)

	// FindVotes returns the votes matching the filter ordered by CreatedAt
	// ascending (ties by ID).
	FindVotes(ctx context.Context, filter VoteFilter) ([]models.Vote, error)

	// AggregateByRecipient counts votes with the given status in a period,
	// grouped by recipient.
	AggregateByRecipient(ctx context.Context, period models.Period, status models.VoteStatus) (map[string]int, error)

	// TransitionVoteStatus moves a vote to a new status if the transition is
	// legal from its current status. Returns models.ErrVoteNotFound or
	// models.ErrInvalidTransition.
	TransitionVoteStatus(ctx context.Context, voteID string, to models.VoteStatus) error
}

// UserDirectory reads the users the identity collaborator owns.
type UserDirectory interface {
	// GetUserByID returns nil and no error when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns a map of user ID to User. Users that don't
	// exist are omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// ListActiveUsers returns all active users ordered by name.
	ListActiveUsers(ctx context.Context) ([]models.User, error)

	// UpsertUser creates or replaces a user record. Used by identity sync.
	UpsertUser(ctx context.Context, user *models.User) error
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// MongoDB) without changing the engine or service layer.
type Store interface {
	Ledger
	UserDirectory

	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
