package calculator

// DefaultPerVoteRate is the reward per approved vote, in whole currency units.
const DefaultPerVoteRate int64 = 100

// RewardPolicy converts approved vote counts into money.
type RewardPolicy struct {
	PerVoteRate int64
}

// Amount returns count × PerVoteRate. Negative counts are treated as zero.
func (p RewardPolicy) Amount(count int) int64 {
	if count <= 0 {
		return 0
	}
	return int64(count) * p.PerVoteRate
}
