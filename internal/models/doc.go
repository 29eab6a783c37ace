// Package models defines the core domain models for KulaPay.
//
// # Models
//
//   - Vendor: a registered food vendor, identified by phone number
//   - Customer: a buyer, identified by phone number, with derived loyalty
//     points and a cached credit limit
//   - Transaction: an immutable sale record linking a vendor and a customer
//
// # Design Principles
//
//  1. **Phone numbers are identity**: vendors and customers are keyed by
//     phone number, which is how USSD and SMS identify callers.
//  2. **Transactions are append-only**: a transaction is never mutated or
//     deleted once recorded.
//  3. **Derived values stay derived**: a customer's points and credit limit
//     are always recomputable from transaction history. The credit limit
//     stored on Customer is a display cache, never the source of truth for
//     eligibility decisions.
package models
