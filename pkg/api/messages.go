package api

// Period selects an accounting period. Zero fields mean "current".
type Period struct {
	Month int `json:"month,omitempty"`
	Year  int `json:"year,omitempty"`
}

// Vote is a recorded vote as seen by its voter.
type Vote struct {
	Id             string `json:"id"`
	FromUser       string `json:"from_user"`
	ToUser         string `json:"to_user"`
	Month          int    `json:"month"`
	Year           int    `json:"year"`
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	CreatedAt      int64  `json:"created_at"` // Unix seconds
	RecipientName  string `json:"recipient_name,omitempty"`
	RecipientGroup string `json:"recipient_group,omitempty"`
}

// User is a member of the identity directory.
type User struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	Group  string `json:"group"`
	Status string `json:"status"`
}

// Recipient is a user the caller may vote for.
type Recipient struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Group        string `json:"group"`
	AlreadyVoted bool   `json:"already_voted"`
}

// LeaderboardEntry is one ranked recipient.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserId        string `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Group         string `json:"group"`
	VotesReceived int    `json:"votes_received"`
	Earnings      int64  `json:"earnings"`
}

// CastVoteRequest casts a vote from the authenticated user.
type CastVoteRequest struct {
	ToUser  string `json:"to_user"`
	Message string `json:"message,omitempty"`
}

type CastVoteResponse struct {
	Vote      *Vote `json:"vote"`
	Remaining int   `json:"remaining"`
}

// ListMyVotesRequest lists the caller's votes in a period.
type ListMyVotesRequest struct {
	Period
}

type ListMyVotesResponse struct {
	Month     int     `json:"month"`
	Year      int     `json:"year"`
	Votes     []*Vote `json:"votes"`
	VotesCast int     `json:"votes_cast"`
	MaxVotes  int     `json:"max_votes"`
	Remaining int     `json:"remaining"`
}

type ListEligibleRecipientsRequest struct{}

type ListEligibleRecipientsResponse struct {
	Recipients []*Recipient `json:"recipients"`
}

// GetDashboardRequest reads the caller's dashboard for a period.
type GetDashboardRequest struct {
	Period
}

type GetDashboardResponse struct {
	UserId                string `json:"user_id"`
	Month                 int    `json:"month"`
	Year                  int    `json:"year"`
	VotesCast             int    `json:"votes_cast"`
	MaxVotes              int    `json:"max_votes"`
	Remaining             int    `json:"remaining"`
	VotesReceived         int    `json:"votes_received"`
	EarningsThisPeriod    int64  `json:"earnings_this_period"`
	LifetimeVotesReceived int    `json:"lifetime_votes_received"`
	LifetimeEarnings      int64  `json:"lifetime_earnings"`
}

// GetLeaderboardRequest ranks recipients in a period. Limit 0 uses the
// server default.
type GetLeaderboardRequest struct {
	Period
	Limit int `json:"limit,omitempty"`
}

type GetLeaderboardResponse struct {
	Month   int                 `json:"month"`
	Year    int                 `json:"year"`
	Entries []*LeaderboardEntry `json:"entries"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}
