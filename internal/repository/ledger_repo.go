// internal/repository/ledger_repo.go
package repository

import (
	"context"

	"recharge-core/internal/domain"
)

// LedgerRepository defines the interface for ledger entry data operations.
type LedgerRepository interface {
	// CreateEntry inserts a new ledger entry and populates its ID.
	CreateEntry(ctx context.Context, q DBExecutor, entry *domain.LedgerEntry) error
	// MarkCompleted transitions a processing entry to completed, storing the
	// gateway response and the SIM used. Fails if the entry is not processing.
	MarkCompleted(ctx context.Context, q DBExecutor, entryID int64, responseMessage string, simID int64) error
	// MarkFailed transitions a processing entry to failed with the captured
	// error message. Fails if the entry is not processing.
	MarkFailed(ctx context.Context, q DBExecutor, entryID int64, errorMessage string) error
	// GetEntryByID retrieves a single ledger entry.
	GetEntryByID(ctx context.Context, q DBExecutor, entryID int64) (*domain.LedgerEntry, error)
	// ListEntriesByAccount retrieves a paginated ledger history for an account
	// together with the total entry count.
	ListEntriesByAccount(ctx context.Context, q DBExecutor, accountID int64, limit, offset int) ([]domain.LedgerEntry, int64, error)
}
