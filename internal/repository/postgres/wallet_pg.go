// internal/repository/postgres/wallet_pg.go
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
	"github.com/shopspring/decimal"
)

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct {
	// Stateless; methods receive a DBExecutor directly.
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *sqlx.DB) repository.WalletRepository {
	return &WalletRepository{}
}

// EnsureWallet creates a zeroed wallet for the account if none exists.
// Any mutation or recharge may be the first touch of an account.
func (r *WalletRepository) EnsureWallet(ctx context.Context, q repository.DBExecutor, accountID int64, currency string) error {
	query := `INSERT INTO wallets (account_id, currency, balance, debt, created_at, updated_at)
              VALUES ($1, $2, 0, 0, $3, $3)
              ON CONFLICT (account_id) DO NOTHING`
	if _, err := q.ExecContext(ctx, query, accountID, currency, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to ensure wallet for account %d: %w", accountID, err)
	}
	return nil
}

// GetWalletByAccountID retrieves a wallet by the owning account id.
func (r *WalletRepository) GetWalletByAccountID(ctx context.Context, q repository.DBExecutor, accountID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT id, account_id, currency, balance, debt, created_at, updated_at
              FROM wallets WHERE account_id = $1`
	err := q.GetContext(ctx, &wallet, query, accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet for account %d: %w", accountID, err)
	}
	return &wallet, nil
}

// GetWalletForUpdate retrieves a wallet and row-locks it for the duration of
// the surrounding transaction, serializing concurrent mutations per wallet.
func (r *WalletRepository) GetWalletForUpdate(ctx context.Context, q repository.DBExecutor, accountID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT id, account_id, currency, balance, debt, created_at, updated_at
              FROM wallets WHERE account_id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &wallet, query, accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet for account %d: %w", accountID, err)
	}
	return &wallet, nil
}

// AdjustBalance applies a signed delta to the wallet balance. The delta form
// makes refunds independent of any concurrent activity on the same wallet.
func (r *WalletRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, accountID int64, delta decimal.Decimal) error {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = $2 WHERE account_id = $3`
	result, err := q.ExecContext(ctx, query, delta, time.Now().UTC(), accountID)
	if err != nil {
		return fmt.Errorf("failed to adjust balance for account %d: %w", accountID, err)
	}
	return requireOneRow(result, accountID)
}

// AdjustDebt applies a signed delta to the wallet debt, floored at zero.
func (r *WalletRepository) AdjustDebt(ctx context.Context, q repository.DBExecutor, accountID int64, delta decimal.Decimal) error {
	query := `UPDATE wallets SET debt = GREATEST(debt + $1, 0), updated_at = $2 WHERE account_id = $3`
	result, err := q.ExecContext(ctx, query, delta, time.Now().UTC(), accountID)
	if err != nil {
		return fmt.Errorf("failed to adjust debt for account %d: %w", accountID, err)
	}
	return requireOneRow(result, accountID)
}

// SetBalance overwrites the wallet balance with an absolute amount.
func (r *WalletRepository) SetBalance(ctx context.Context, q repository.DBExecutor, accountID int64, amount decimal.Decimal) error {
	query := `UPDATE wallets SET balance = $1, updated_at = $2 WHERE account_id = $3`
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), accountID)
	if err != nil {
		return fmt.Errorf("failed to set balance for account %d: %w", accountID, err)
	}
	return requireOneRow(result, accountID)
}

func requireOneRow(result sql.Result, accountID int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for account %d: %w", accountID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no wallet row updated for account %d: %w", accountID, util.ErrWalletNotFound)
	}
	return nil
}
