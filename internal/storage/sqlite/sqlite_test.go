package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"kulapay/internal/models"
	"kulapay/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "kulapay-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("GetVendor returns ErrVendorNotFound for unknown phone", func(t *testing.T) {
		_, err := store.GetVendor(ctx, "+254700000000")
		if !errors.Is(err, storage.ErrVendorNotFound) {
			t.Errorf("expected ErrVendorNotFound, got %v", err)
		}
	})

	t.Run("CreateVendor then GetVendor round-trips", func(t *testing.T) {
		vendor := &models.Vendor{Phone: "+254792138852", BusinessName: "Mama Njeri's"}
		if err := store.CreateVendor(ctx, vendor); err != nil {
			t.Fatalf("CreateVendor failed: %v", err)
		}
		if vendor.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		got, err := store.GetVendor(ctx, "+254792138852")
		if err != nil {
			t.Fatalf("GetVendor failed: %v", err)
		}
		if got.BusinessName != "Mama Njeri's" {
			t.Errorf("BusinessName = %q, want %q", got.BusinessName, "Mama Njeri's")
		}
	})

	t.Run("CreateVendor rejects duplicate phone", func(t *testing.T) {
		err := store.CreateVendor(ctx, &models.Vendor{Phone: "+254792138852", BusinessName: "Other"})
		if !errors.Is(err, storage.ErrVendorExists) {
			t.Errorf("expected ErrVendorExists, got %v", err)
		}
	})

	t.Run("GetOrCreateCustomer is idempotent", func(t *testing.T) {
		first, err := store.GetOrCreateCustomer(ctx, "0712345678")
		if err != nil {
			t.Fatalf("GetOrCreateCustomer failed: %v", err)
		}
		if first.Points != 0 || first.CreditLimit != 0 {
			t.Errorf("new customer should start at zero, got %+v", first)
		}

		second, err := store.GetOrCreateCustomer(ctx, "0712345678")
		if err != nil {
			t.Fatalf("second GetOrCreateCustomer failed: %v", err)
		}
		if second.Phone != first.Phone {
			t.Errorf("phone mismatch: %q vs %q", second.Phone, first.Phone)
		}
	})

	t.Run("AppendTransaction generates ID and timestamp", func(t *testing.T) {
		tx := &models.Transaction{
			VendorPhone:   "+254792138852",
			CustomerPhone: "0712345678",
			Amount:        50,
			PaymentType:   models.PaymentCash,
		}
		if err := store.AppendTransaction(ctx, tx); err != nil {
			t.Fatalf("AppendTransaction failed: %v", err)
		}
		if tx.ID == "" {
			t.Error("Expected transaction ID to be generated")
		}
		if tx.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("ListTransactions returns full history oldest first", func(t *testing.T) {
		for _, amount := range []float64{20, 30} {
			tx := &models.Transaction{
				VendorPhone:   "+254792138852",
				CustomerPhone: "0712345678",
				Amount:        amount,
				PaymentType:   models.PaymentMpesa,
			}
			if err := store.AppendTransaction(ctx, tx); err != nil {
				t.Fatalf("AppendTransaction failed: %v", err)
			}
		}

		txs, err := store.ListTransactions(ctx, "0712345678")
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(txs) != 3 {
			t.Fatalf("expected 3 transactions, got %d", len(txs))
		}
		for i := 1; i < len(txs); i++ {
			if txs[i].CreatedAt < txs[i-1].CreatedAt {
				t.Errorf("transactions out of order at index %d", i)
			}
		}
	})

	t.Run("ListTransactions for unknown customer is empty", func(t *testing.T) {
		txs, err := store.ListTransactions(ctx, "0799999999")
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(txs) != 0 {
			t.Errorf("expected empty history, got %d transactions", len(txs))
		}
	})

	t.Run("ListAllTransactions pages", func(t *testing.T) {
		page, err := store.ListAllTransactions(ctx, 0, 2)
		if err != nil {
			t.Fatalf("ListAllTransactions failed: %v", err)
		}
		if len(page) != 2 {
			t.Errorf("expected page of 2, got %d", len(page))
		}
	})

	t.Run("UpdateCustomerPoints and credit limit persist", func(t *testing.T) {
		if err := store.UpdateCustomerPoints(ctx, "0712345678", 10); err != nil {
			t.Fatalf("UpdateCustomerPoints failed: %v", err)
		}
		if err := store.UpdateCustomerCreditLimit(ctx, "0712345678", 120.5); err != nil {
			t.Fatalf("UpdateCustomerCreditLimit failed: %v", err)
		}

		customer, err := store.GetCustomer(ctx, "0712345678")
		if err != nil {
			t.Fatalf("GetCustomer failed: %v", err)
		}
		if customer.Points != 10 {
			t.Errorf("Points = %d, want 10", customer.Points)
		}
		if customer.CreditLimit != 120.5 {
			t.Errorf("CreditLimit = %v, want 120.5", customer.CreditLimit)
		}
	})

	t.Run("Updates against unknown customer fail", func(t *testing.T) {
		if err := store.UpdateCustomerPoints(ctx, "0700000001", 1); !errors.Is(err, storage.ErrCustomerNotFound) {
			t.Errorf("expected ErrCustomerNotFound, got %v", err)
		}
	})
}
