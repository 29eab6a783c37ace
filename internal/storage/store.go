// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"kulapay/internal/models"
)

// Sentinel errors returned by Store implementations. Callers distinguish
// "not found" (user-visible rejection) from infrastructure failure.
var (
	ErrVendorNotFound   = errors.New("vendor not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrVendorExists     = errors.New("vendor already exists")
)

// Store defines the interface for KulaPay storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the conversation layer.
type Store interface {
	// GetVendor retrieves a vendor by phone number.
	// Returns ErrVendorNotFound if the vendor is not registered.
	GetVendor(ctx context.Context, phone string) (*models.Vendor, error)

	// CreateVendor registers a new vendor. Returns ErrVendorExists if the
	// phone number is already registered.
	CreateVendor(ctx context.Context, vendor *models.Vendor) error

	// GetCustomer retrieves a customer by phone number.
	// Returns ErrCustomerNotFound if no transaction has ever referenced
	// the number.
	GetCustomer(ctx context.Context, phone string) (*models.Customer, error)

	// GetOrCreateCustomer retrieves a customer, creating the row if it
	// does not exist. Creation is idempotent on phone number: concurrent
	// calls for the same unknown number yield one row.
	GetOrCreateCustomer(ctx context.Context, phone string) (*models.Customer, error)

	// AppendTransaction persists a new immutable transaction. The ID and
	// CreatedAt fields are populated by the store if unset.
	AppendTransaction(ctx context.Context, tx *models.Transaction) error

	// ListTransactions returns a customer's full transaction history,
	// oldest first. An unknown customer yields an empty slice, not an
	// error.
	ListTransactions(ctx context.Context, customerPhone string) ([]models.Transaction, error)

	// ListAllTransactions returns a page of all transactions, newest
	// first, for the debug listing endpoint.
	ListAllTransactions(ctx context.Context, offset, limit int) ([]models.Transaction, error)

	// UpdateCustomerPoints writes the recomputed point total onto the
	// customer row. Display cache only.
	UpdateCustomerPoints(ctx context.Context, phone string, points int) error

	// UpdateCustomerCreditLimit writes the freshly computed credit limit
	// onto the customer row. Display cache only; eligibility is always
	// recomputed from transaction history.
	UpdateCustomerCreditLimit(ctx context.Context, phone string, limit float64) error

	// Close releases any resources held by the store.
	Close() error
}
