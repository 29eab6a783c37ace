package notify

import (
	"context"
	"log/slog"
)

// LoanScheduler sets up repayment for an accepted loan. The real flow
// would initiate an M-Pesa checkout and track the payment callback.
type LoanScheduler interface {
	ScheduleRepayment(ctx context.Context, customerPhone string, amount float64) error
}

// MockLoanScheduler stands in for the payments integration: it logs the
// repayment and reports success. Swap for a real implementation when the
// payments API is wired up.
type MockLoanScheduler struct{}

func (MockLoanScheduler) ScheduleRepayment(_ context.Context, customerPhone string, amount float64) error {
	slog.Info("loan repayment initiated",
		"customer_phone", FormatPhone(customerPhone),
		"amount", amount,
		"status", "pending",
	)
	return nil
}
