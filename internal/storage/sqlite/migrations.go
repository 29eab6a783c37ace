package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS vendors (
    phone TEXT PRIMARY KEY,
    business_name TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS customers (
    phone TEXT PRIMARY KEY,
    points INTEGER NOT NULL DEFAULT 0,
    credit_limit REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    vendor_phone TEXT NOT NULL,
    customer_phone TEXT NOT NULL,
    amount REAL NOT NULL,
    payment_type TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (vendor_phone) REFERENCES vendors(phone),
    FOREIGN KEY (customer_phone) REFERENCES customers(phone)
);

CREATE INDEX IF NOT EXISTS idx_transactions_customer_phone ON transactions(customer_phone);
CREATE INDEX IF NOT EXISTS idx_transactions_vendor_phone ON transactions(vendor_phone);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
