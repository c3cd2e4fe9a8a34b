package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/kudos/internal/calculator"
	"github.com/mmynk/kudos/internal/models"
)

// CastVoteRequest is a vote as submitted by the current actor.
type CastVoteRequest struct {
	From    string
	To      string
	Message string
}

// CastVote admits a vote from req.From to req.To in the current period.
//
// It either records exactly one vote or none. Rejections are returned as
// models.ErrSelfVote, models.ErrUserInactive, models.ErrDuplicateVote or
// models.ErrQuotaExceeded and are never retried; storage failures are
// wrapped in models.ErrStoreUnavailable.
func (e *Engine) CastVote(ctx context.Context, req CastVoteRequest) (*models.Vote, error) {
	if req.From == req.To {
		return nil, models.ErrSelfVote
	}

	if err := e.requireActive(ctx, req.From, "voter"); err != nil {
		return nil, err
	}
	if err := e.requireActive(ctx, req.To, "recipient"); err != nil {
		return nil, err
	}

	// One clock read: the period must agree with created_at.
	now := e.periods.Now()
	period := calculator.PeriodOf(now)

	vote := &models.Vote{
		FromUser:  req.From,
		ToUser:    req.To,
		Month:     period.Month,
		Year:      period.Year,
		Status:    models.VoteApproved,
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: now.UTC(),
	}

	if err := e.ledger.InsertVote(ctx, vote, e.cfg.MonthlyQuota); err != nil {
		if isRejection(err) {
			slog.Debug("vote rejected", "from_user", req.From, "to_user", req.To, "period", period.String(), "reason", err)
			return nil, err
		}
		return nil, unavailable(err)
	}

	return vote, nil
}

// TransitionVote moves a vote through the moderation state machine
// (pending -> approved | rejected).
func (e *Engine) TransitionVote(ctx context.Context, voteID string, to models.VoteStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", models.ErrInvalidTransition, to)
	}
	err := e.ledger.TransitionVoteStatus(ctx, voteID, to)
	if err == nil || errors.Is(err, models.ErrVoteNotFound) || errors.Is(err, models.ErrInvalidTransition) {
		return err
	}
	return unavailable(err)
}

func (e *Engine) requireActive(ctx context.Context, userID, role string) error {
	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		return unavailable(err)
	}
	if !user.IsActive() {
		return fmt.Errorf("%w: %s %s", models.ErrUserInactive, role, userID)
	}
	return nil
}

func isRejection(err error) bool {
	return errors.Is(err, models.ErrDuplicateVote) ||
		errors.Is(err, models.ErrQuotaExceeded) ||
		errors.Is(err, models.ErrSelfVote) ||
		errors.Is(err, models.ErrInvalidPeriod)
}
