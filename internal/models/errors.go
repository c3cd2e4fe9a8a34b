package models

import "errors"

// Vote rejections. Each is a distinct, user-visible outcome and none of them
// is retried by the engine.
var (
	ErrSelfVote      = errors.New("cannot vote for yourself")
	ErrQuotaExceeded = errors.New("vote limit reached for this month")
	ErrDuplicateVote = errors.New("already voted for this person this month")
	ErrUserInactive  = errors.New("user is not eligible to vote")
)

// ErrStoreUnavailable wraps transient storage failures. Callers may retry
// with backoff.
var ErrStoreUnavailable = errors.New("vote store unavailable")

var (
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrVoteNotFound      = errors.New("vote not found")
	ErrInvalidTransition = errors.New("invalid vote status transition")
)

// ErrUserNotFound is returned when an identity lookup finds no user.
var ErrUserNotFound = errors.New("user not found")
