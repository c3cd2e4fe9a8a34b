package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/kudos/internal/auth"
	"github.com/mmynk/kudos/internal/middleware"
	"github.com/mmynk/kudos/internal/models"
)

// ReasonHeader carries a stable, machine-readable rejection reason on error
// responses.
const ReasonHeader = "Kudos-Reason"

// Rejection reasons sent in ReasonHeader and used as vote metric outcomes.
const (
	ReasonSelfVote         = "self_vote"
	ReasonQuotaExceeded    = "quota_exceeded"
	ReasonDuplicateVote    = "duplicate_vote"
	ReasonUserInactive     = "user_inactive"
	ReasonInvalidPeriod    = "invalid_period"
	ReasonUserNotFound     = "user_not_found"
	ReasonStoreUnavailable = "store_unavailable"
)

var errorCodes = []struct {
	sentinel error
	code     connect.Code
	reason   string
}{
	{models.ErrSelfVote, connect.CodeInvalidArgument, ReasonSelfVote},
	{models.ErrInvalidPeriod, connect.CodeInvalidArgument, ReasonInvalidPeriod},
	{models.ErrQuotaExceeded, connect.CodeResourceExhausted, ReasonQuotaExceeded},
	{models.ErrDuplicateVote, connect.CodeAlreadyExists, ReasonDuplicateVote},
	{models.ErrUserInactive, connect.CodeFailedPrecondition, ReasonUserInactive},
	{models.ErrUserNotFound, connect.CodeNotFound, ReasonUserNotFound},
	{models.ErrStoreUnavailable, connect.CodeUnavailable, ReasonStoreUnavailable},
}

// reasonOf returns the rejection reason for err, or "" if err is not one of
// the engine's known outcomes.
func reasonOf(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.sentinel) {
			return e.reason
		}
	}
	return ""
}

// toConnectError maps engine errors to Connect codes. Rejections carry the
// sentinel's own text so clients see a stable message.
func toConnectError(err error) *connect.Error {
	for _, e := range errorCodes {
		if !errors.Is(err, e.sentinel) {
			continue
		}
		msg := e.sentinel
		if e.code == connect.CodeUnavailable {
			msg = err
		}
		cerr := connect.NewError(e.code, msg)
		cerr.Meta().Set(ReasonHeader, e.reason)
		return cerr
	}

	switch {
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// currentActor returns the authenticated user ID set by middleware.RequireAuth.
func currentActor(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// periodFromRequest returns nil when the request names no period, so the
// engine picks the current one.
func periodFromRequest(month, year int) *models.Period {
	if month == 0 && year == 0 {
		return nil
	}
	return &models.Period{Month: month, Year: year}
}
