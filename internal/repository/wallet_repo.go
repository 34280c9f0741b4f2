// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"recharge-core/internal/domain"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// EnsureWallet creates a zeroed wallet for the account if none exists yet.
	EnsureWallet(ctx context.Context, q DBExecutor, accountID int64, currency string) error
	// GetWalletByAccountID retrieves a wallet by the owning account id.
	GetWalletByAccountID(ctx context.Context, q DBExecutor, accountID int64) (*domain.Wallet, error)
	// GetWalletForUpdate retrieves a wallet by account id and row-locks it
	// for the duration of the surrounding transaction.
	GetWalletForUpdate(ctx context.Context, q DBExecutor, accountID int64) (*domain.Wallet, error)
	// AdjustBalance applies a signed delta to the wallet balance.
	AdjustBalance(ctx context.Context, q DBExecutor, accountID int64, delta decimal.Decimal) error
	// AdjustDebt applies a signed delta to the wallet debt, floored at zero.
	AdjustDebt(ctx context.Context, q DBExecutor, accountID int64, delta decimal.Decimal) error
	// SetBalance overwrites the wallet balance with an absolute amount.
	SetBalance(ctx context.Context, q DBExecutor, accountID int64, amount decimal.Decimal) error
}
