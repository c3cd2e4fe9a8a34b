package engine

import (
	"context"

	"github.com/mmynk/kudos/internal/calculator"
	"github.com/mmynk/kudos/internal/models"
	"github.com/mmynk/kudos/internal/storage"
)

// Dashboard returns userID's activity for period, or for the current
// period when period is nil.
func (e *Engine) Dashboard(ctx context.Context, userID string, period *models.Period) (*models.Dashboard, error) {
	p, err := e.periods.Resolve(period)
	if err != nil {
		return nil, err
	}

	cast, err := e.ledger.CountVotes(ctx, storage.VoteFilter{FromUser: userID}.ForPeriod(p))
	if err != nil {
		return nil, unavailable(err)
	}

	received, err := e.ledger.CountVotes(ctx, storage.VoteFilter{ToUser: userID, Status: models.VoteApproved}.ForPeriod(p))
	if err != nil {
		return nil, unavailable(err)
	}

	lifetime, err := e.ledger.CountVotes(ctx, storage.VoteFilter{ToUser: userID, Status: models.VoteApproved})
	if err != nil {
		return nil, unavailable(err)
	}

	return &models.Dashboard{
		UserID:                userID,
		Period:                p,
		VotesCast:             cast,
		MaxVotes:              e.cfg.MonthlyQuota,
		Remaining:             e.remaining(cast),
		VotesReceived:         received,
		EarningsThisPeriod:    e.rewards.Amount(received),
		LifetimeVotesReceived: lifetime,
		LifetimeEarnings:      e.rewards.Amount(lifetime),
	}, nil
}

// Leaderboard ranks recipients of approved votes in period (current period
// when nil). limit <= 0 uses the configured default.
//
// Ranks are assigned after sorting, truncating and dropping recipients the
// identity directory no longer knows, so they always run 1..N.
func (e *Engine) Leaderboard(ctx context.Context, period *models.Period, limit int) (*models.Leaderboard, error) {
	p, err := e.periods.Resolve(period)
	if err != nil {
		return nil, err
	}
	limit = calculator.ClampLimit(limit, e.cfg.DefaultLeaderboardLimit, e.cfg.MaxLeaderboardLimit)

	counts, err := e.ledger.AggregateByRecipient(ctx, p, models.VoteApproved)
	if err != nil {
		return nil, unavailable(err)
	}
	ranked := calculator.RankRecipients(counts, limit)

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.UserID
	}
	users, err := e.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, unavailable(err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(ranked))
	for _, r := range ranked {
		user, ok := users[r.UserID]
		if !ok {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{
			Rank:          len(entries) + 1,
			UserID:        r.UserID,
			Name:          user.Name,
			Email:         user.Email,
			Group:         user.Group,
			VotesReceived: r.VotesReceived,
			Earnings:      e.rewards.Amount(r.VotesReceived),
		})
	}

	return &models.Leaderboard{Period: p, Entries: entries}, nil
}

// MyVotes lists the votes userID cast in period (current period when nil),
// oldest first, with the recipient's name and group.
func (e *Engine) MyVotes(ctx context.Context, userID string, period *models.Period) (*models.MyVotes, error) {
	p, err := e.periods.Resolve(period)
	if err != nil {
		return nil, err
	}

	votes, err := e.ledger.FindVotes(ctx, storage.VoteFilter{FromUser: userID}.ForPeriod(p))
	if err != nil {
		return nil, unavailable(err)
	}

	ids := make([]string, len(votes))
	for i, v := range votes {
		ids[i] = v.ToUser
	}
	recipients, err := e.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, unavailable(err)
	}

	views := make([]models.CastVoteView, len(votes))
	for i, v := range votes {
		views[i] = models.CastVoteView{Vote: v}
		if u, ok := recipients[v.ToUser]; ok {
			views[i].RecipientName = u.Name
			views[i].RecipientGroup = u.Group
		}
	}

	return &models.MyVotes{
		Period:    p,
		Votes:     views,
		VotesCast: len(votes),
		MaxVotes:  e.cfg.MonthlyQuota,
		Remaining: e.remaining(len(votes)),
	}, nil
}

// EligibleRecipients lists every active user except userID, flagging the
// ones userID already voted for in the current period.
func (e *Engine) EligibleRecipients(ctx context.Context, userID string) ([]models.Recipient, error) {
	p := e.periods.CurrentPeriod()

	users, err := e.users.ListActiveUsers(ctx)
	if err != nil {
		return nil, unavailable(err)
	}

	mine, err := e.ledger.FindVotes(ctx, storage.VoteFilter{FromUser: userID}.ForPeriod(p))
	if err != nil {
		return nil, unavailable(err)
	}
	voted := make(map[string]bool, len(mine))
	for _, v := range mine {
		voted[v.ToUser] = true
	}

	recipients := make([]models.Recipient, 0, len(users))
	for _, u := range users {
		if u.ID == userID {
			continue
		}
		recipients = append(recipients, models.Recipient{
			UserID:       u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Group:        u.Group,
			AlreadyVoted: voted[u.ID],
		})
	}
	return recipients, nil
}

func (e *Engine) remaining(cast int) int {
	if cast >= e.cfg.MonthlyQuota {
		return 0
	}
	return e.cfg.MonthlyQuota - cast
}

// RemainingVotes returns how many more votes userID may cast in period.
func (e *Engine) RemainingVotes(ctx context.Context, userID string, period models.Period) (int, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}
	cast, err := e.ledger.CountVotes(ctx, storage.VoteFilter{FromUser: userID}.ForPeriod(period))
	if err != nil {
		return 0, unavailable(err)
	}
	return e.remaining(cast), nil
}
