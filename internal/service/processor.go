// Package service orchestrates transactions against the store and the
// loyalty/credit engines.
package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"kulapay/internal/credit"
	"kulapay/internal/loyalty"
	"kulapay/internal/models"
	"kulapay/internal/notify"
	"kulapay/internal/storage"
)

// ErrInvalidAmount rejects a sale with a non-positive amount.
var ErrInvalidAmount = errors.New("amount must be greater than 0")

// NotEligibleError rejects a loan acceptance and carries the progress
// explanation for the vendor.
type NotEligibleError struct {
	Decision credit.Decision
}

func (e *NotEligibleError) Error() string {
	return "not eligible for credit: " + e.Decision.Reason
}

// SaleResult reports the outcome of a recorded sale.
type SaleResult struct {
	CustomerPhone string
	Amount        float64
	PaymentType   models.PaymentType

	// PointsEarned is the point delta from this sale; Loyalty is the
	// customer's position after it.
	PointsEarned int
	Loyalty      loyalty.Summary

	// Credit is the eligibility verdict after this sale.
	Credit credit.Decision
}

// LoanResult reports an accepted loan.
type LoanResult struct {
	CustomerPhone string
	Amount        float64
}

// Processor is the transaction orchestrator. All point and credit values
// it returns are recomputed from the customer's full transaction history,
// never incremented in place, so the stored totals are always reproducible
// from the transactions table.
type Processor struct {
	store storage.Store
	loans notify.LoanScheduler

	// Per-customer serialization for read-modify-write sequences.
	// Striped by phone hash; collisions only cost extra serialization.
	locks [64]sync.Mutex
}

// NewProcessor creates a Processor backed by the given store and loan
// scheduler.
func NewProcessor(store storage.Store, loans notify.LoanScheduler) *Processor {
	return &Processor{store: store, loans: loans}
}

func (p *Processor) lock(customerPhone string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(customerPhone))
	return &p.locks[h.Sum32()%uint32(len(p.locks))]
}

// RecordSale validates the sale, ensures the customer exists, appends an
// immutable transaction, and recomputes the customer's loyalty and credit
// position from the full history. Vendors are never auto-created:
// storage.ErrVendorNotFound is returned for an unregistered vendor.
func (p *Processor) RecordSale(ctx context.Context, vendorPhone, customerPhone string, amount float64, paymentType models.PaymentType) (*SaleResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := p.store.GetVendor(ctx, vendorPhone); err != nil {
		return nil, err
	}

	mu := p.lock(customerPhone)
	mu.Lock()
	defer mu.Unlock()

	if _, err := p.store.GetOrCreateCustomer(ctx, customerPhone); err != nil {
		return nil, err
	}

	before, err := p.history(ctx, customerPhone)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		VendorPhone:   vendorPhone,
		CustomerPhone: customerPhone,
		Amount:        amount,
		PaymentType:   paymentType,
	}
	if err := p.store.AppendTransaction(ctx, tx); err != nil {
		return nil, err
	}

	after, err := p.history(ctx, customerPhone)
	if err != nil {
		return nil, err
	}

	summary := loyalty.ComputePoints(after.spend)
	if err := p.store.UpdateCustomerPoints(ctx, customerPhone, summary.Points); err != nil {
		return nil, fmt.Errorf("persist points: %w", err)
	}

	return &SaleResult{
		CustomerPhone: customerPhone,
		Amount:        amount,
		PaymentType:   paymentType,
		PointsEarned:  summary.Points - loyalty.ComputePoints(before.spend).Points,
		Loyalty:       summary,
		Credit:        credit.Evaluate(after.count, after.spend),
	}, nil
}

// CheckPoints returns the customer's loyalty position, recomputed from
// history. Returns storage.ErrCustomerNotFound for an unknown number.
func (p *Processor) CheckPoints(ctx context.Context, customerPhone string) (loyalty.Summary, error) {
	if _, err := p.store.GetCustomer(ctx, customerPhone); err != nil {
		return loyalty.Summary{}, err
	}
	stats, err := p.history(ctx, customerPhone)
	if err != nil {
		return loyalty.Summary{}, err
	}
	return loyalty.ComputePoints(stats.spend), nil
}

// CheckCredit evaluates eligibility from the full history and caches the
// fresh limit on the customer row for display. An unknown customer simply
// reads as ineligible; the cache write is skipped.
func (p *Processor) CheckCredit(ctx context.Context, customerPhone string) (credit.Decision, error) {
	mu := p.lock(customerPhone)
	mu.Lock()
	defer mu.Unlock()

	stats, err := p.history(ctx, customerPhone)
	if err != nil {
		return credit.Decision{}, err
	}
	decision := credit.Evaluate(stats.count, stats.spend)

	err = p.store.UpdateCustomerCreditLimit(ctx, customerPhone, decision.Limit)
	if err != nil && !errors.Is(err, storage.ErrCustomerNotFound) {
		return credit.Decision{}, fmt.Errorf("persist credit limit: %w", err)
	}
	return decision, nil
}

// AcceptLoan re-evaluates eligibility and, if it holds, records a
// credit-type transaction for the full limit and triggers the repayment
// side effect. The cached limit is never trusted for the decision.
func (p *Processor) AcceptLoan(ctx context.Context, vendorPhone, customerPhone string) (*LoanResult, error) {
	if _, err := p.store.GetVendor(ctx, vendorPhone); err != nil {
		return nil, err
	}

	mu := p.lock(customerPhone)
	mu.Lock()
	defer mu.Unlock()

	if _, err := p.store.GetCustomer(ctx, customerPhone); err != nil {
		return nil, err
	}

	stats, err := p.history(ctx, customerPhone)
	if err != nil {
		return nil, err
	}
	decision := credit.Evaluate(stats.count, stats.spend)
	if !decision.Eligible {
		return nil, &NotEligibleError{Decision: decision}
	}

	tx := &models.Transaction{
		VendorPhone:   vendorPhone,
		CustomerPhone: customerPhone,
		Amount:        decision.Limit,
		PaymentType:   models.PaymentCredit,
	}
	if err := p.store.AppendTransaction(ctx, tx); err != nil {
		return nil, err
	}
	if err := p.store.UpdateCustomerCreditLimit(ctx, customerPhone, decision.Limit); err != nil {
		return nil, fmt.Errorf("persist credit limit: %w", err)
	}

	// The loan transaction is already recorded; repayment setup is a side
	// effect and must not fail the acceptance.
	if err := p.loans.ScheduleRepayment(ctx, customerPhone, decision.Limit); err != nil {
		slog.Warn("loan repayment scheduling failed",
			"customer_phone", customerPhone,
			"amount", decision.Limit,
			"error", err,
		)
	}
	return &LoanResult{CustomerPhone: customerPhone, Amount: decision.Limit}, nil
}

// historyStats summarizes a customer's non-credit transaction history.
// Credit-type transactions are loan draws, not spend, and count toward
// neither points nor eligibility.
type historyStats struct {
	count int
	spend float64
}

func (p *Processor) history(ctx context.Context, customerPhone string) (historyStats, error) {
	txs, err := p.store.ListTransactions(ctx, customerPhone)
	if err != nil {
		return historyStats{}, err
	}
	var stats historyStats
	for _, tx := range txs {
		if tx.PaymentType == models.PaymentCredit {
			continue
		}
		stats.count++
		stats.spend += tx.Amount
	}
	return stats, nil
}
