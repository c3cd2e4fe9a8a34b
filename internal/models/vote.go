package models

import "time"

// VoteStatus is the moderation state of a vote.
type VoteStatus string

const (
	VotePending  VoteStatus = "pending"
	VoteApproved VoteStatus = "approved"
	VoteRejected VoteStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s VoteStatus) Valid() bool {
	switch s {
	case VotePending, VoteApproved, VoteRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether a vote in status s may move to status to.
// Only pending votes can change; approved and rejected are terminal.
func (s VoteStatus) CanTransitionTo(to VoteStatus) bool {
	return s == VotePending && (to == VoteApproved || to == VoteRejected)
}

// Vote is a single recognition vote. Votes form an append-only ledger: once
// written, only Status may change.
type Vote struct {
	// ID is the unique identifier for the vote (UUID format).
	ID string `json:"id" bson:"_id"`

	// FromUser is the voter. Never equal to ToUser.
	FromUser string `json:"from_user" bson:"from_user"`

	// ToUser is the recipient.
	ToUser string `json:"to_user" bson:"to_user"`

	// Month and Year identify the Period the vote counts against. They are
	// fixed when the vote is created.
	Month int `json:"month" bson:"month"`
	Year  int `json:"year" bson:"year"`

	// Status is approved for every auto-admitted vote.
	Status VoteStatus `json:"status" bson:"status"`

	// Message is an optional note to the recipient.
	Message string `json:"message,omitempty" bson:"message,omitempty"`

	// CreatedAt is when the vote was recorded (UTC).
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Period returns the accounting period of the vote.
func (v *Vote) Period() Period {
	return Period{Month: v.Month, Year: v.Year}
}
