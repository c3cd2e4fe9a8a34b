package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/kudos/internal/engine"
	"github.com/mmynk/kudos/internal/metrics"
	"github.com/mmynk/kudos/pkg/api"
	"github.com/mmynk/kudos/pkg/api/apiconnect"
)

// VoteService implements the Connect VoteService
type VoteService struct {
	apiconnect.UnimplementedVoteServiceHandler
	engine  *engine.Engine
	metrics *metrics.ServerMetrics
}

// NewVoteService creates a new VoteService backed by the engine. m may be nil.
func NewVoteService(eng *engine.Engine, m *metrics.ServerMetrics) *VoteService {
	return &VoteService{engine: eng, metrics: m}
}

// CastVote records a vote from the current actor.
func (s *VoteService) CastVote(ctx context.Context, req *connect.Request[api.CastVoteRequest]) (*connect.Response[api.CastVoteResponse], error) {
	from, err := currentActor(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CastVote request received", "from_user", from, "to_user", req.Msg.ToUser)

	vote, err := s.engine.CastVote(ctx, engine.CastVoteRequest{
		From:    from,
		To:      req.Msg.ToUser,
		Message: req.Msg.Message,
	})
	if err != nil {
		reason := reasonOf(err)
		if reason == "" {
			reason = metrics.OutcomeError
		}
		s.metrics.ObserveVote(reason)
		slog.Warn("CastVote failed", "from_user", from, "to_user", req.Msg.ToUser, "reason", reason, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.ObserveVote(metrics.OutcomeAccepted)

	// The vote is already committed; a failed quota read only degrades the
	// response.
	remaining, err := s.engine.RemainingVotes(ctx, from, vote.Period())
	if err != nil {
		slog.Warn("CastVote: failed to read remaining votes", "from_user", from, "error", err)
	}

	slog.Info("Vote cast", "vote_id", vote.ID, "period", vote.Period().String(), "remaining", remaining)

	return connect.NewResponse(&api.CastVoteResponse{
		Vote:      voteToAPI(*vote),
		Remaining: remaining,
	}), nil
}

// ListMyVotes lists the votes the current actor cast in a period.
func (s *VoteService) ListMyVotes(ctx context.Context, req *connect.Request[api.ListMyVotesRequest]) (*connect.Response[api.ListMyVotesResponse], error) {
	userID, err := currentActor(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListMyVotes request received", "user_id", userID, "month", req.Msg.Month, "year", req.Msg.Year)

	mine, err := s.engine.MyVotes(ctx, userID, periodFromRequest(req.Msg.Month, req.Msg.Year))
	if err != nil {
		slog.Error("ListMyVotes failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	votes := make([]*api.Vote, len(mine.Votes))
	for i, v := range mine.Votes {
		votes[i] = voteToAPI(v.Vote)
		votes[i].RecipientName = v.RecipientName
		votes[i].RecipientGroup = v.RecipientGroup
	}

	slog.Info("ListMyVotes successful", "user_id", userID, "count", len(votes))

	return connect.NewResponse(&api.ListMyVotesResponse{
		Month:     mine.Period.Month,
		Year:      mine.Period.Year,
		Votes:     votes,
		VotesCast: mine.VotesCast,
		MaxVotes:  mine.MaxVotes,
		Remaining: mine.Remaining,
	}), nil
}

// ListEligibleRecipients lists the active users the current actor may vote for.
func (s *VoteService) ListEligibleRecipients(ctx context.Context, req *connect.Request[api.ListEligibleRecipientsRequest]) (*connect.Response[api.ListEligibleRecipientsResponse], error) {
	userID, err := currentActor(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListEligibleRecipients request received", "user_id", userID)

	recipients, err := s.engine.EligibleRecipients(ctx, userID)
	if err != nil {
		slog.Error("ListEligibleRecipients failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Recipient, len(recipients))
	for i, r := range recipients {
		out[i] = &api.Recipient{
			Id:           r.UserID,
			Name:         r.Name,
			Email:        r.Email,
			Group:        r.Group,
			AlreadyVoted: r.AlreadyVoted,
		}
	}

	slog.Info("ListEligibleRecipients successful", "user_id", userID, "count", len(out))

	return connect.NewResponse(&api.ListEligibleRecipientsResponse{Recipients: out}), nil
}
