// Package models defines the core domain models for Kudos.
//
// # Ledger Models
//
// The following models are owned by the vote ledger:
//   - Vote: A single recognition vote from one user to another within a Period
//   - Period: The (month, year) accounting window quotas and leaderboards are scoped to
//   - VoteStatus: The moderation state of a vote (pending, approved, rejected)
//
// # Identity Models
//
// User is owned by the identity collaborator. The ledger references users by
// their opaque ID and only reads ID, Name, Group and Status.
//
// # Views
//
// Dashboard, Leaderboard, MyVotes and Recipient are read-only projections
// derived from the ledger. They are never persisted.
//
// # Design Principles
//
// 1. **Immutable ledger**: votes are never updated except for status transitions
// 2. **Avoid circular references**: Use ID strings instead of pointers for relationships
// 3. **Integer money**: earnings are whole currency units (int64), never floats
package models
