// Package loyalty converts customer spend into KulaPoints and reward
// progress. Pure computation, no I/O.
package loyalty

import "fmt"

const (
	// KESPerPoint is how much non-credit spend earns one point.
	KESPerPoint = 10

	// RewardThreshold is the points needed for one free mandazi.
	RewardThreshold = 50
)

// Summary is the loyalty position derived from a customer's total spend.
type Summary struct {
	// Points is floor(total spend / KESPerPoint).
	Points int

	// ProgressToReward is how many points into the current reward cycle
	// the customer is (Points mod RewardThreshold).
	ProgressToReward int

	// RewardsEarned is how many full rewards the history covers.
	RewardsEarned int
}

// ComputePoints derives the loyalty summary from total historical
// non-credit spend. Negative spend is treated as zero.
func ComputePoints(totalSpend float64) Summary {
	if totalSpend < 0 {
		totalSpend = 0
	}
	points := int(totalSpend / KESPerPoint)
	return Summary{
		Points:           points,
		ProgressToReward: points % RewardThreshold,
		RewardsEarned:    points / RewardThreshold,
	}
}

// Message renders the customer-facing points summary, including progress
// toward the next free mandazi.
func (s Summary) Message() string {
	if s.Points >= RewardThreshold {
		return fmt.Sprintf("You have %d KulaPoints. You can get a free Mandazi!", s.Points)
	}
	remaining := RewardThreshold - s.ProgressToReward
	return fmt.Sprintf("You have %d KulaPoints. Spend %d more to get a free Mandazi!",
		s.Points, remaining*KESPerPoint)
}
