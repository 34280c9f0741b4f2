// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Role identifies the privilege level of an authenticated operator.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleWholesaler Role = "wholesaler"
	RoleRetailer   Role = "retailer"
)

// Actor is the authenticated identity performing an operation, as supplied
// by the upstream auth provider. It is trusted, never re-validated here.
type Actor struct {
	AccountID int64
	Role      Role
}

// Wallet represents an operator's monetary account.
// Balance reflects only committed mutations; every change to it is paired
// with exactly one ledger entry. Debt tracks amounts sold on credit.
type Wallet struct {
	ID        int64           `db:"id" json:"id"`
	AccountID int64           `db:"account_id" json:"account_id"`
	Currency  string          `db:"currency" json:"currency"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`   // NUMERIC(20, 4) in DB
	Debt      decimal.Decimal `db:"debt" json:"debt"`         // non-negative
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet creates a zeroed Wallet for an account.
func NewWallet(accountID int64, currency string) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		AccountID: accountID,
		Currency:  currency,
		Balance:   decimal.Zero,
		Debt:      decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MutationKind is one of the five wallet mutation operations.
type MutationKind string

const (
	MutationCash   MutationKind = "cash"   // balance += amount, delegated debit of the actor when actor != target
	MutationCredit MutationKind = "credit" // balance += amount; debt += amount
	MutationRepay  MutationKind = "repay"  // debt = max(0, debt - amount)
	MutationDeduct MutationKind = "deduct" // balance -= amount, privileged
	MutationSet    MutationKind = "set"    // balance = amount, privileged
)

// Privileged reports whether the mutation kind is restricted to admins.
func (k MutationKind) Privileged() bool {
	return k == MutationDeduct || k == MutationSet
}

// Valid reports whether the mutation kind is one of the five known kinds.
func (k MutationKind) Valid() bool {
	switch k {
	case MutationCash, MutationCredit, MutationRepay, MutationDeduct, MutationSet:
		return true
	}
	return false
}
