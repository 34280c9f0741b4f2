// internal/domain/ledger.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// EntryKind defines the kind of a ledger entry.
type EntryKind string

const (
	EntryKindDeposit       EntryKind = "deposit"
	EntryKindDebtRepayment EntryKind = "debt_repayment"
	EntryKindAdjustment    EntryKind = "adjustment"
	EntryKindFlexy         EntryKind = "flexy"
	EntryKindOffer         EntryKind = "offer"
)

// EntryStatus defines the lifecycle status of a ledger entry.
// An entry is immutable once its status leaves StatusProcessing.
type EntryStatus string

const (
	StatusProcessing EntryStatus = "processing"
	StatusCompleted  EntryStatus = "completed"
	StatusFailed     EntryStatus = "failed"
)

// LedgerEntry records one monetary movement and its outcome.
// Simple wallet mutations are created directly in StatusCompleted; only
// recharge entries pass through StatusProcessing, because only they depend
// on an external, non-transactional confirmation step.
type LedgerEntry struct {
	ID          int64           `db:"id" json:"id"`
	AccountID   int64           `db:"account_id" json:"account_id"`
	PerformedBy int64           `db:"performed_by" json:"performed_by"` // may differ from AccountID for delegated charges
	Kind        EntryKind       `db:"kind" json:"kind"`
	Amount      decimal.Decimal `db:"amount" json:"amount"` // signed; negative for outflow adjustments
	Status      EntryStatus     `db:"status" json:"status"`
	Description string          `db:"description" json:"description"`

	// Recharge context, empty for plain wallet mutations.
	PhoneNumber     *string `db:"phone_number" json:"phone_number,omitempty"`
	Operator        *string `db:"operator" json:"operator,omitempty"`
	SIMID           *int64  `db:"sim_id" json:"sim_id,omitempty"`
	ResponseMessage *string `db:"response_message" json:"response_message,omitempty"`
	Error           *string `db:"error" json:"error,omitempty"`

	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	FailedAt    *time.Time `db:"failed_at" json:"failed_at,omitempty"`
}

// NewLedgerEntry creates a completed entry for a synchronous wallet mutation.
func NewLedgerEntry(accountID, performedBy int64, kind EntryKind, amount decimal.Decimal, description string) *LedgerEntry {
	return &LedgerEntry{
		AccountID:   accountID,
		PerformedBy: performedBy,
		Kind:        kind,
		Amount:      amount,
		Status:      StatusCompleted,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewRechargeEntry creates a processing entry at debit time. It carries
// enough context (operator, target phone) to support later compensation.
func NewRechargeEntry(accountID int64, kind EntryKind, price decimal.Decimal, phoneNumber, operator, description string) *LedgerEntry {
	return &LedgerEntry{
		AccountID:   accountID,
		PerformedBy: accountID,
		Kind:        kind,
		Amount:      price,
		Status:      StatusProcessing,
		Description: description,
		PhoneNumber: &phoneNumber,
		Operator:    &operator,
		CreatedAt:   time.Now().UTC(),
	}
}
