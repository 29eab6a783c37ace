// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"kulapay/internal/models"
	"kulapay/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetVendor retrieves a vendor by phone number.
func (s *SQLiteStore) GetVendor(ctx context.Context, phone string) (*models.Vendor, error) {
	vendor := &models.Vendor{}
	err := s.db.QueryRowContext(ctx,
		"SELECT phone, business_name, created_at FROM vendors WHERE phone = ?",
		phone,
	).Scan(&vendor.Phone, &vendor.BusinessName, &vendor.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrVendorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	return vendor, nil
}

// CreateVendor registers a new vendor.
func (s *SQLiteStore) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	if vendor.CreatedAt == 0 {
		vendor.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO vendors (phone, business_name, created_at) VALUES (?, ?, ?)",
		vendor.Phone, vendor.BusinessName, vendor.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrVendorExists
		}
		return fmt.Errorf("failed to insert vendor: %w", err)
	}
	return nil
}

// GetCustomer retrieves a customer by phone number.
func (s *SQLiteStore) GetCustomer(ctx context.Context, phone string) (*models.Customer, error) {
	customer := &models.Customer{}
	err := s.db.QueryRowContext(ctx,
		"SELECT phone, points, credit_limit FROM customers WHERE phone = ?",
		phone,
	).Scan(&customer.Phone, &customer.Points, &customer.CreditLimit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// GetOrCreateCustomer retrieves a customer, inserting the row if absent.
// The conflict clause makes concurrent creation idempotent on phone number.
func (s *SQLiteStore) GetOrCreateCustomer(ctx context.Context, phone string) (*models.Customer, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO customers (phone, points, credit_limit) VALUES (?, 0, 0) ON CONFLICT(phone) DO NOTHING",
		phone,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}
	return s.GetCustomer(ctx, phone)
}

// AppendTransaction persists a new transaction.
func (s *SQLiteStore) AppendTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt == 0 {
		tx.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions (id, vendor_phone, customer_phone, amount, payment_type, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		tx.ID, tx.VendorPhone, tx.CustomerPhone, tx.Amount, string(tx.PaymentType), tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// ListTransactions returns a customer's full history, oldest first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, customerPhone string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, vendor_phone, customer_phone, amount, payment_type, created_at FROM transactions WHERE customer_phone = ? ORDER BY created_at, id",
		customerPhone,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListAllTransactions returns a page of all transactions, newest first.
func (s *SQLiteStore) ListAllTransactions(ctx context.Context, offset, limit int) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, vendor_phone, customer_phone, amount, payment_type, created_at FROM transactions ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// UpdateCustomerPoints writes the recomputed point total.
func (s *SQLiteStore) UpdateCustomerPoints(ctx context.Context, phone string, points int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE customers SET points = ? WHERE phone = ?",
		points, phone,
	)
	if err != nil {
		return fmt.Errorf("failed to update points: %w", err)
	}
	return requireRow(res, storage.ErrCustomerNotFound)
}

// UpdateCustomerCreditLimit writes the freshly computed credit limit.
func (s *SQLiteStore) UpdateCustomerCreditLimit(ctx context.Context, phone string, limit float64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE customers SET credit_limit = ? WHERE phone = ?",
		limit, phone,
	)
	if err != nil {
		return fmt.Errorf("failed to update credit limit: %w", err)
	}
	return requireRow(res, storage.ErrCustomerNotFound)
}

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var paymentType string
		if err := rows.Scan(&tx.ID, &tx.VendorPhone, &tx.CustomerPhone, &tx.Amount, &paymentType, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.PaymentType = models.PaymentType(paymentType)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the error text.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
