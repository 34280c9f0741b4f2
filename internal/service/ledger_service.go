// internal/service/ledger_service.go
package service

import (
	"context"
	"fmt"

	"recharge-core/internal/domain"
	"recharge-core/internal/repository"
	"recharge-core/internal/util"
	"recharge-core/pkg/db"

	"github.com/shopspring/decimal"
)

// MutationResult is the outcome of a wallet mutation.
type MutationResult struct {
	NewBalance    decimal.Decimal `json:"new_balance"`
	NewDebt       decimal.Decimal `json:"new_debt"`
	LedgerEntryID int64           `json:"ledger_entry_id"`
}

// LedgerService defines the interface for wallet ledger business logic.
type LedgerService interface {
	// ApplyMutation executes one of the five wallet mutation kinds against the
	// target account on behalf of the actor, atomically with the creation of
	// exactly one ledger entry.
	ApplyMutation(ctx context.Context, actor domain.Actor, accountID int64, kind domain.MutationKind, amount decimal.Decimal, description string) (*MutationResult, error)
	// GetWallet returns the wallet for an account.
	GetWallet(ctx context.Context, accountID int64) (*domain.Wallet, error)
	// GetHistory returns a paginated ledger history for an account.
	GetHistory(ctx context.Context, accountID int64, limit, offset int) ([]domain.LedgerEntry, int64, error)
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	dbBeginner db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	walletRepo repository.WalletRepository
	ledgerRepo repository.LedgerRepository
	currency   string
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	ledgerRepo repository.LedgerRepository,
	currency string,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) LedgerService {
	return &ledgerService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		currency:   currency,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// ApplyMutation executes a wallet mutation inside one database transaction.
func (s *ledgerService) ApplyMutation(ctx context.Context, actor domain.Actor, accountID int64, kind domain.MutationKind, amount decimal.Decimal, description string) (*MutationResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown mutation kind %q: %w", kind, util.ErrInvalidInput)
	}
	if kind == domain.MutationSet {
		if amount.IsNegative() {
			return nil, util.ErrInvalidInput
		}
	} else if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}
	if kind.Privileged() && actor.Role != domain.RoleAdmin {
		return nil, util.ErrUnauthorized
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("apply mutation: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("apply mutation: transaction controller does not implement DBExecutor")
	}

	delegated := kind == domain.MutationCash && actor.AccountID != accountID

	// Auto-create zeroed wallets, then lock the affected rows. For a
	// delegated cash charge both wallets are locked in ascending account id
	// order so two opposite delegations cannot deadlock.
	if err := s.walletRepo.EnsureWallet(ctx, txExecutor, accountID, s.currency); err != nil {
		return nil, fmt.Errorf("apply mutation: %w", err)
	}
	if delegated {
		if err := s.walletRepo.EnsureWallet(ctx, txExecutor, actor.AccountID, s.currency); err != nil {
			return nil, fmt.Errorf("apply mutation: %w", err)
		}
	}

	lockOrder := []int64{accountID}
	if delegated {
		if actor.AccountID < accountID {
			lockOrder = []int64{actor.AccountID, accountID}
		} else {
			lockOrder = []int64{accountID, actor.AccountID}
		}
	}
	wallets := make(map[int64]*domain.Wallet, len(lockOrder))
	for _, id := range lockOrder {
		w, err := s.walletRepo.GetWalletForUpdate(ctx, txExecutor, id)
		if err != nil {
			return nil, fmt.Errorf("apply mutation: failed to lock wallet %d: %w", id, err)
		}
		wallets[id] = w
	}

	entryKind, entryAmount, err := s.applyKind(ctx, txExecutor, actor, accountID, kind, amount, wallets, delegated)
	if err != nil {
		return nil, err
	}

	if description == "" {
		description = defaultDescription(kind)
	}
	entry := domain.NewLedgerEntry(accountID, actor.AccountID, entryKind, entryAmount, description)
	if err := s.ledgerRepo.CreateEntry(ctx, txExecutor, entry); err != nil {
		return nil, fmt.Errorf("apply mutation: failed to create ledger entry: %w", err)
	}

	updated, err := s.walletRepo.GetWalletByAccountID(ctx, txExecutor, accountID)
	if err != nil {
		return nil, fmt.Errorf("apply mutation: failed to re-fetch wallet %d: %w", accountID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("apply mutation: failed to commit transaction: %w", err)
	}

	return &MutationResult{
		NewBalance:    updated.Balance,
		NewDebt:       updated.Debt,
		LedgerEntryID: entry.ID,
	}, nil
}

// applyKind performs the balance/debt updates for one mutation kind and
// returns the ledger kind and signed logged amount.
func (s *ledgerService) applyKind(ctx context.Context, q repository.DBExecutor, actor domain.Actor, accountID int64, kind domain.MutationKind, amount decimal.Decimal, wallets map[int64]*domain.Wallet, delegated bool) (domain.EntryKind, decimal.Decimal, error) {
	switch kind {
	case domain.MutationCash:
		if delegated {
			actorWallet := wallets[actor.AccountID]
			if actorWallet.Balance.LessThan(amount) {
				return "", decimal.Zero, util.ErrInsufficientFunds
			}
			if err := s.walletRepo.AdjustBalance(ctx, q, actor.AccountID, amount.Neg()); err != nil {
				return "", decimal.Zero, fmt.Errorf("apply mutation: failed to debit actor %d: %w", actor.AccountID, err)
			}
		}
		if err := s.walletRepo.AdjustBalance(ctx, q, accountID, amount); err != nil {
			return "", decimal.Zero, fmt.Errorf("apply mutation: failed to credit account %d: %w", accountID, err)
		}
		return domain.EntryKindDeposit, amount, nil

	case domain.MutationCredit:
		if err := s.walletRepo.AdjustBalance(ctx, q, accountID, amount); err != nil {
			return "", decimal.Zero, fmt.Errorf("apply mutation: failed to credit account %d: %w", accountID, err)
		}
		if err := s.walletRepo.AdjustDebt(ctx, q, accountID, amount); err != nil {
			return "", decimal.Zero, fmt.Errorf("apply mutation: failed to record debt for account %d: %w", accountID, err)
		}
		return domain.EntryKindDeposit, amount, nil

	case domain.MutationRepay:
		if err := s.walletRepo.AdjustDebt(ctx, q, accountID, amount.Neg()); err != nil {
			return "", decimal.Zero, fmt.Errorf("apply mutation: failed to repay debt for account %d: %w", accountID, err)
		}
		return domain.EntryKindDebtRepayment, amount, nil

	case domain.MutationDeduct:
		if err := s.walletRepo.AdjustBalance(ctx, q, accountID, amount.Neg()); err != nil {
			return "", decimal.Zero, fmt.Errorf("apply mutation: failed to deduct from account %d: %w", accountID, err)
		}
		return domain.EntryKindAdjustment, amount.Neg(), nil

	case domain.MutationSet:
		// Logged amount is the signed delta from the previous balance.
		delta := amount.Sub(wallets[accountID].Balance)
		if err := s.walletRepo.SetBalance(ctx, q, accountID, amount); err != nil {
			return "", decimal.Zero, fmt.Errorf("apply mutation: failed to set balance for account %d: %w", accountID, err)
		}
		return domain.EntryKindAdjustment, delta, nil
	}
	return "", decimal.Zero, util.ErrInvalidInput
}

func defaultDescription(kind domain.MutationKind) string {
	switch kind {
	case domain.MutationCash:
		return "cash deposit"
	case domain.MutationCredit:
		return "credit deposit"
	case domain.MutationRepay:
		return "debt repayment"
	case domain.MutationDeduct:
		return "balance deduction"
	case domain.MutationSet:
		return "balance set"
	}
	return string(kind)
}

// GetWallet returns the wallet for an account.
func (s *ledgerService) GetWallet(ctx context.Context, accountID int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByAccountID(ctx, s.dbExecutor, accountID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get wallet: failed to get wallet for account %d: %w", accountID, err)
	}
	return wallet, nil
}

// GetHistory returns a paginated ledger history for an account.
func (s *ledgerService) GetHistory(ctx context.Context, accountID int64, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	entries, totalCount, err := s.ledgerRepo.ListEntriesByAccount(ctx, s.dbExecutor, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("get history: failed to list entries for account %d: %w", accountID, err)
	}
	return entries, totalCount, nil
}
