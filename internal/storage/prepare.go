package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/kudos/internal/models"
)

// PrepareVote fills in store-assigned fields and checks the invariants that
// do not need to read the ledger. Every backend calls it before writing.
func PrepareVote(vote *models.Vote, quota int) error {
	if vote.FromUser == "" || vote.ToUser == "" {
		return fmt.Errorf("vote requires both from_user and to_user")
	}
	if vote.FromUser == vote.ToUser {
		return models.ErrSelfVote
	}
	if err := vote.Period().Validate(); err != nil {
		return err
	}
	if quota < 1 {
		return fmt.Errorf("quota must be positive, got %d", quota)
	}

	if vote.ID == "" {
		vote.ID = uuid.New().String()
	}
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now().UTC()
	}
	if vote.Status == "" {
		vote.Status = models.VoteApproved
	}
	if !vote.Status.Valid() {
		return fmt.Errorf("unknown vote status %q", vote.Status)
	}
	return nil
}

// PrepareUser applies the identity defaults every backend stores.
func PrepareUser(user *models.User) error {
	if user.ID == "" {
		return fmt.Errorf("user ID is required")
	}
	if user.Status == "" {
		user.Status = models.UserActive
	}
	if user.Role == "" {
		user.Role = models.RoleEmployee
	}
	if user.Group == "" {
		user.Group = "General"
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	return nil
}
