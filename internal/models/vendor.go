package models

// Vendor represents a registered food vendor.
//
// Vendors are created out-of-band (via the registration endpoint), never by
// the conversation layer. A sale from an unregistered phone number is
// rejected, not auto-registered.
type Vendor struct {
	// Phone is the vendor's phone number (unique identity).
	Phone string

	// BusinessName is the vendor's display name.
	BusinessName string

	// CreatedAt is the Unix timestamp when the vendor registered.
	CreatedAt int64
}
