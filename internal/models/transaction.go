package models

// PaymentType tags how a transaction was paid.
type PaymentType string

const (
	PaymentCash   PaymentType = "cash"
	PaymentMpesa  PaymentType = "mpesa"
	PaymentCredit PaymentType = "credit"
)

// Label returns the customer-facing name of the payment type.
func (p PaymentType) Label() string {
	switch p {
	case PaymentCash:
		return "Cash"
	case PaymentMpesa:
		return "M-Pesa"
	case PaymentCredit:
		return "Credit"
	}
	return string(p)
}

// Transaction represents a single sale. Transactions are immutable once
// recorded; the set of a customer's transactions is the sole source of
// truth for loyalty points and credit eligibility.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// VendorPhone is the phone number of the vendor who recorded the sale.
	VendorPhone string

	// CustomerPhone is the phone number of the buying customer.
	CustomerPhone string

	// Amount is the sale amount in KES. Always positive.
	Amount float64

	// PaymentType is how the customer paid. Credit-type transactions are
	// loan draws and do not count as spend.
	PaymentType PaymentType

	// CreatedAt is the Unix timestamp when the sale was recorded.
	CreatedAt int64
}
