// internal/repository/postgres/ledger_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"recharge-core/internal/domain"
	"recharge-core/internal/repository"
	"recharge-core/internal/util"

	"github.com/jmoiron/sqlx"
)

// LedgerRepository implements repository.LedgerRepository for PostgreSQL.
type LedgerRepository struct {
	// Stateless; methods receive a DBExecutor directly.
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) repository.LedgerRepository {
	return &LedgerRepository{}
}

// CreateEntry inserts a new ledger entry and populates its ID.
func (r *LedgerRepository) CreateEntry(ctx context.Context, q repository.DBExecutor, entry *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries
              (account_id, performed_by, kind, amount, status, description,
               phone_number, operator, sim_id, response_message, error,
               created_at, completed_at, failed_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
              RETURNING id`
	err := q.QueryRowContext(ctx, query,
		entry.AccountID,
		entry.PerformedBy,
		entry.Kind,
		entry.Amount,
		entry.Status,
		entry.Description,
		entry.PhoneNumber,
		entry.Operator,
		entry.SIMID,
		entry.ResponseMessage,
		entry.Error,
		entry.CreatedAt,
		entry.CompletedAt,
		entry.FailedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

// MarkCompleted transitions a processing entry to completed.
// The status guard keeps terminal entries immutable.
func (r *LedgerRepository) MarkCompleted(ctx context.Context, q repository.DBExecutor, entryID int64, responseMessage string, simID int64) error {
	query := `UPDATE ledger_entries
              SET status = $1, response_message = $2, sim_id = $3, completed_at = $4
              WHERE id = $5 AND status = $6`
	result, err := q.ExecContext(ctx, query,
		domain.StatusCompleted, responseMessage, simID, time.Now().UTC(),
		entryID, domain.StatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to complete ledger entry %d: %w", entryID, err)
	}
	return requireProcessingRow(result, entryID)
}

// MarkFailed transitions a processing entry to failed with the captured error.
func (r *LedgerRepository) MarkFailed(ctx context.Context, q repository.DBExecutor, entryID int64, errorMessage string) error {
	query := `UPDATE ledger_entries
              SET status = $1, error = $2, failed_at = $3
              WHERE id = $4 AND status = $5`
	result, err := q.ExecContext(ctx, query,
		domain.StatusFailed, errorMessage, time.Now().UTC(),
		entryID, domain.StatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to fail ledger entry %d: %w", entryID, err)
	}
	return requireProcessingRow(result, entryID)
}

// GetEntryByID retrieves a single ledger entry.
func (r *LedgerRepository) GetEntryByID(ctx context.Context, q repository.DBExecutor, entryID int64) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	query := `SELECT id, account_id, performed_by, kind, amount, status, description,
                     phone_number, operator, sim_id, response_message, error,
                     created_at, completed_at, failed_at
              FROM ledger_entries WHERE id = $1`
	err := q.GetContext(ctx, &entry, query, entryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ledger entry %d: %w", entryID, err)
	}
	return &entry, nil
}

// ListEntriesByAccount retrieves a paginated ledger history for an account.
// It performs two queries: one for the data and one for the total count.
func (r *LedgerRepository) ListEntriesByAccount(ctx context.Context, q repository.DBExecutor, accountID int64, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	entries := []domain.LedgerEntry{}

	query := `SELECT id, account_id, performed_by, kind, amount, status, description,
                     phone_number, operator, sim_id, response_message, error,
                     created_at, completed_at, failed_at
              FROM ledger_entries
              WHERE account_id = $1
              ORDER BY created_at DESC
              LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &entries, query, accountID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch ledger entries for account %d: %w", accountID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1`
	if err := q.GetContext(ctx, &totalCount, countQuery, accountID); err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries for account %d: %w", accountID, err)
	}

	return entries, totalCount, nil
}

func requireProcessingRow(result sql.Result, entryID int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for ledger entry %d: %w", entryID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ledger entry %d is not in processing state", entryID)
	}
	return nil
}
