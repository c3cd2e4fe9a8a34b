package models

// UserStatus reports whether a user may take part in voting.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// User roles carried over from the identity collaborator. They have no
// effect on quota or reward logic.
const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleLeader   = "leader"
	RoleEmployee = "employee"
)

// User represents an employee account.
//
// Users are owned by the identity collaborator; the ledger only stores a
// copy so that views can join names and groups.
type User struct {
	// ID is the opaque, immutable identifier of the user.
	ID string `db:"id" bson:"_id"`

	// Name is the display name of the user.
	Name string `db:"name" bson:"name"`

	// Email is the user's email address (unique).
	Email string `db:"email" bson:"email"`

	// Role is one of admin, hr, leader, employee.
	Role string `db:"role" bson:"role"`

	// Group is the team or department the user belongs to (e.g., "Engineering").
	Group string `db:"group_name" bson:"group"`

	// Status controls voting eligibility. Only active users may cast or receive votes.
	Status UserStatus `db:"status" bson:"status"`

	// CreatedAt is the Unix timestamp when the user record was created.
	CreatedAt int64 `db:"created_at" bson:"created_at"`
}

// IsActive reports whether the user may cast or receive votes.
func (u *User) IsActive() bool {
	return u != nil && u.Status == UserActive
}
