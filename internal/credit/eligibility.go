// Package credit decides Eat-Now-Pay-Later eligibility and credit limits
// from a customer's transaction history. Pure computation, no I/O.
package credit

import (
	"fmt"
	"strings"
)

const (
	// MinTransactions is the minimum number of non-credit transactions
	// required for eligibility. The bound is inclusive.
	MinTransactions = 5

	// MinSpend is the minimum total non-credit spend in KES required for
	// eligibility. The bound is inclusive.
	MinSpend = 500.0

	// LimitFraction of total spend becomes the credit limit.
	LimitFraction = 0.20

	// MaxLimit caps the credit limit in KES.
	MaxLimit = 300.0
)

// Decision is the outcome of an eligibility evaluation.
type Decision struct {
	Eligible bool

	// Limit is the available credit in KES. Zero unless eligible.
	Limit float64

	// Reason explains an ineligible verdict in terms of what is still
	// missing. Empty when eligible.
	Reason string
}

// Evaluate applies the eligibility rule to a customer's non-credit
// transaction count and total spend: eligible iff txCount >= 5 and
// spend >= 500, with limit = min(0.2*spend, 300).
func Evaluate(txCount int, totalSpend float64) Decision {
	if txCount >= MinTransactions && totalSpend >= MinSpend {
		limit := totalSpend * LimitFraction
		if limit > MaxLimit {
			limit = MaxLimit
		}
		return Decision{Eligible: true, Limit: limit}
	}
	return Decision{Reason: shortfall(txCount, totalSpend)}
}

// shortfall names what the customer still needs to unlock credit.
func shortfall(txCount int, totalSpend float64) string {
	var parts []string
	if txCount < MinTransactions {
		parts = append(parts, fmt.Sprintf("%d more transactions", MinTransactions-txCount))
	}
	if totalSpend < MinSpend {
		parts = append(parts, fmt.Sprintf("KES %.2f more in spend", MinSpend-totalSpend))
	}
	return "need " + strings.Join(parts, " and ")
}

// Message renders the vendor-facing eligibility summary.
func (d Decision) Message() string {
	if d.Eligible {
		return fmt.Sprintf("Available Credit: KES %.2f", d.Limit)
	}
	return fmt.Sprintf("Keep buying to unlock credit: %s.", d.Reason)
}
