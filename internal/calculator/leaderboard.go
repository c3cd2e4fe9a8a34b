package calculator

import "sort"

// RecipientCount is the number of approved votes one recipient received.
type RecipientCount struct {
	UserID        string
	VotesReceived int
}

// RankRecipients orders recipients by votes received, highest first, and
// truncates the result to limit entries (limit <= 0 means no limit).
//
// Equal counts are ordered by ascending user ID so that identical ledgers
// always produce identical leaderboards.
func RankRecipients(counts map[string]int, limit int) []RecipientCount {
	ranked := make([]RecipientCount, 0, len(counts))
	for userID, n := range counts {
		ranked = append(ranked, RecipientCount{UserID: userID, VotesReceived: n})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].VotesReceived != ranked[j].VotesReceived {
			return ranked[i].VotesReceived > ranked[j].VotesReceived
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// ClampLimit returns limit bounded to [1, max], substituting def for
// non-positive values.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}
