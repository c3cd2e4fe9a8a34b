// Package engine implements the vote quota and ledger engine: admitting
// votes and deriving dashboards and leaderboards from the ledger.
//
// The engine is stateless. It holds no locks and keeps no copies of votes;
// every invariant that depends on concurrent writers is delegated to
// storage.Ledger.InsertVote.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/kudos/internal/calculator"
	"github.com/mmynk/kudos/internal/models"
	"github.com/mmynk/kudos/internal/storage"
)

// Engine admits votes and computes read-only views over the ledger.
type Engine struct {
	ledger  storage.Ledger
	users   storage.UserDirectory
	periods *calculator.PeriodCalculator
	rewards calculator.RewardPolicy
	cfg     Config
}

// New creates an Engine. A nil period calculator reads the system clock in UTC.
func New(ledger storage.Ledger, users storage.UserDirectory, periods *calculator.PeriodCalculator, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if periods == nil {
		periods = calculator.NewPeriodCalculator(nil, nil)
	}
	return &Engine{
		ledger:  ledger,
		users:   users,
		periods: periods,
		rewards: calculator.RewardPolicy{PerVoteRate: cfg.PerVoteRate},
		cfg:     cfg,
	}, nil
}

// Config returns the policy the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// CurrentPeriod returns the accounting period for the engine's clock.
func (e *Engine) CurrentPeriod() models.Period {
	return e.periods.CurrentPeriod()
}

// User resolves a user through the identity directory.
func (e *Engine) User(ctx context.Context, userID string) (*models.User, error) {
	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, unavailable(err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrUserNotFound, userID)
	}
	return user, nil
}

// unavailable marks an infrastructure failure as retryable. Cancellation is
// the caller's own doing and is passed through untouched.
func unavailable(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
}
