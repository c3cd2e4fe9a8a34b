package models

// Dashboard summarizes one user's activity for a period.
type Dashboard struct {
	UserID string
	Period Period

	VotesCast int
	MaxVotes  int
	Remaining int

	VotesReceived      int
	EarningsThisPeriod int64

	LifetimeVotesReceived int
	LifetimeEarnings      int64
}

// LeaderboardEntry is one ranked recipient. Rank is 1-based.
type LeaderboardEntry struct {
	Rank          int
	UserID        string
	Name          string
	Email         string
	Group         string
	VotesReceived int
	Earnings      int64
}

// Leaderboard is the ranked list of recipients for a period.
type Leaderboard struct {
	Period  Period
	Entries []LeaderboardEntry
}

// CastVoteView is a vote cast by the current user, joined with the recipient.
type CastVoteView struct {
	Vote
	RecipientName  string
	RecipientGroup string
}

// MyVotes lists the votes a user cast in a period together with their
// remaining quota.
type MyVotes struct {
	Period    Period
	Votes     []CastVoteView
	VotesCast int
	MaxVotes  int
	Remaining int
}

// Recipient is a user the current user may vote for.
type Recipient struct {
	UserID       string
	Name         string
	Email        string
	Group        string
	AlreadyVoted bool
}
