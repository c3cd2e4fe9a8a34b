package engine

import (
	"fmt"

	"github.com/mmynk/kudos/internal/calculator"
)

// Defaults for the current deployment.
const (
	DefaultMonthlyQuota     = 4
	DefaultLeaderboardLimit = 20
	MaxLeaderboardLimit     = 100
)

// Config holds the policy constants the engine is built with.
type Config struct {
	// MonthlyQuota is the number of votes a user may cast per period.
	MonthlyQuota int

	// PerVoteRate is the reward per approved vote, in whole currency units.
	PerVoteRate int64

	// DefaultLeaderboardLimit applies when a caller asks for limit <= 0.
	DefaultLeaderboardLimit int

	// MaxLeaderboardLimit caps any requested leaderboard size.
	MaxLeaderboardLimit int
}

// DefaultConfig returns the production policy: 4 votes a month, 100 per vote.
func DefaultConfig() Config {
	return Config{
		MonthlyQuota:            DefaultMonthlyQuota,
		PerVoteRate:             calculator.DefaultPerVoteRate,
		DefaultLeaderboardLimit: DefaultLeaderboardLimit,
		MaxLeaderboardLimit:     MaxLeaderboardLimit,
	}
}

// Validate checks that every limit is usable.
func (c Config) Validate() error {
	if c.MonthlyQuota < 1 {
		return fmt.Errorf("monthly quota must be at least 1, got %d", c.MonthlyQuota)
	}
	if c.PerVoteRate < 0 {
		return fmt.Errorf("per-vote rate must not be negative, got %d", c.PerVoteRate)
	}
	if c.DefaultLeaderboardLimit < 1 {
		return fmt.Errorf("default leaderboard limit must be at least 1, got %d", c.DefaultLeaderboardLimit)
	}
	if c.MaxLeaderboardLimit < c.DefaultLeaderboardLimit {
		return fmt.Errorf("max leaderboard limit %d is below the default %d", c.MaxLeaderboardLimit, c.DefaultLeaderboardLimit)
	}
	return nil
}
