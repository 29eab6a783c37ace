package models

// Customer represents a buyer at a KulaPay vendor.
//
// Customers are auto-created the first time a transaction references their
// phone number. Creation is idempotent: two concurrent sales to the same
// unknown number result in exactly one row.
type Customer struct {
	// Phone is the customer's phone number (unique identity).
	Phone string

	// Points is the customer's loyalty point total, derived from
	// transaction history (1 point per 10 KES of non-credit spend).
	Points int

	// CreditLimit is the most recently computed credit limit in KES.
	// This is a display cache; eligibility is always recomputed from
	// transaction history.
	CreditLimit float64
}
