// internal/service/ledger_service_test.go
package service

import (
	"context"
	"testing"

	"recharge-core/internal/domain"
	"recharge-core/internal/util"
	"recharge-core/pkg/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type ledgerTestEnv struct {
	walletRepo   *MockWalletRepository
	ledgerRepo   *MockLedgerRepository
	dbBeginner   *MockDBBeginner
	dbExecutor   *MockDBExecutor
	txController *MockTxController
	service      LedgerService
}

func newLedgerTestEnv() *ledgerTestEnv {
	env := &ledgerTestEnv{
		walletRepo:   new(MockWalletRepository),
		ledgerRepo:   new(MockLedgerRepository),
		dbBeginner:   new(MockDBBeginner),
		dbExecutor:   new(MockDBExecutor),
		txController: new(MockTxController),
	}
	env.service = NewLedgerService(
		env.dbBeginner,
		env.dbExecutor,
		env.walletRepo,
		env.ledgerRepo,
		"DZD",
		func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			return env.txController, nil
		},
		func(tx db.TxController) error {
			return env.txController.Commit()
		},
		func(tx db.TxController) {
			_ = env.txController.Rollback()
		},
	)
	return env
}

func (env *ledgerTestEnv) assertAll(t *testing.T) {
	mock.AssertExpectationsForObjects(t, env.walletRepo, env.ledgerRepo, env.txController)
}

func TestApplyMutation(t *testing.T) {
	amount := decimal.NewFromInt(1000)

	t.Run("CashDepositOwnWallet", func(t *testing.T) {
		ctx := context.Background()
		env := newLedgerTestEnv()
		actor := domain.Actor{AccountID: 7, Role: domain.RoleRetailer}
		wallet := &domain.Wallet{AccountID: 7, Currency: "DZD", Balance: decimal.NewFromInt(500)}
		updated := &domain.Wallet{AccountID: 7, Currency: "DZD", Balance: decimal.NewFromInt(1500)}

		env.txController.On("Commit").Return(nil).Once()
		env.txController.On("Rollback").Return(nil).Maybe()
		env.walletRepo.On("EnsureWallet", ctx, mock.Anything, int64(7), "DZD").Return(nil).Once()
		env.walletRepo.On("GetWalletForUpdate", ctx, mock.Anything, int64(7)).Return(wallet, nil).Once()
		env.walletRepo.On("AdjustBalance", ctx, mock.Anything, int64(7), amount).Return(nil).Once()
		env.ledgerRepo.On("CreateEntry", ctx, mock.Anything, mock.MatchedBy(func(e *domain.LedgerEntry) bool {
			return e.AccountID == 7 && e.PerformedBy == 7 &&
				e.Kind == domain.EntryKindDeposit && e.Status == domain.StatusCompleted &&
				e.Amount.Equal(amount)
		})).Return(nil).Once()
		env.walletRepo.On("GetWalletByAccountID", ctx, mock.Anything, int64(7)).Return(updated, nil).Once()

		result, err := env.service.ApplyMutation(ctx, actor, 7, domain.MutationCash, amount, "")

		assert.NoError(t, err)
		assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(1500)))
		env.assertAll(t)
	})

	t.Run("DelegatedCashCharge", func(t *testing.T) {
		ctx := context.Background()
		env := newLedgerTestEnv()
		actor := domain.Actor{AccountID: 1, Role: domain.RoleWholesaler}
		actorWallet := &domain.Wallet{AccountID: 1, Currency: "DZD", Balance: decimal.NewFromInt(5000)}
		targetWallet := &domain.Wallet{AccountID: 2, Currency: "DZD", Balance: decimal.Zero}
		updated := &domain.Wallet{AccountID: 2, Currency: "DZD", Balance: amount}

		env.txController.On("Commit").Return(nil).Once()
		env.txController.On("Rollback").Return(nil).Maybe()
		env.walletRepo.On("EnsureWallet", ctx, mock.Anything, int64(2), "DZD").Return(nil).Once()
		env.walletRepo.On("EnsureWallet", ctx, mock.Anything, int64(1), "DZD").Return(nil).Once()
		env.walletRepo.On("GetWalletForUpdate", ctx, mock.Anything, int64(1)).Return(actorWallet, nil).Once()
		env.walletRepo.On("GetWalletForUpdate", ctx, mock.Anything, int64(2)).Return(targetWallet, nil).Once()
		env.walletRepo.On("AdjustBalance", ctx, mock.Anything, int64(1), amount.Neg()).Return(nil).Once()
		env.walletRepo.On("AdjustBalance", ctx, mock.Anything, int64(2), amount).Return(nil).Once()
		env.ledgerRepo.On("CreateEntry", ctx, mock.Anything, mock.MatchedBy(func(e *domain.LedgerEntry) bool {
			return e.AccountID == 2 && e.PerformedBy == 1 && e.Kind == domain.EntryKindDeposit
		})).Return(nil).Once()
		env.walletRepo.On("GetWalletByAccountID", ctx, mock.Anything, int64(2)).Return(updated, nil).Once()

		result, err := env.service.ApplyMutation(ctx, actor, 2, domain.MutationCash, amount, "stock transfer")

		assert.NoError(t, err)
		assert.True(t, result.NewBalance.Equal(amount))
		env.assertAll(t)
	})

	t.Run("DelegatedCashInsufficientFunds", func(t *testing.T) {
		ctx := context.Background()
		env := newLedgerTestEnv()
		actor := domain.Actor{AccountID: 1, Role: domain.RoleWholesaler}
		actorWallet := &domain.Wallet{AccountID: 1, Currency: "DZD", Balance: decimal.NewFromInt(300)}
		targetWallet := &domain.Wallet{AccountID: 2, Currency: "DZD", Balance: decimal.Zero}

		env.txController.On("Rollback").Return(nil).Once()
		env.walletRepo.On("EnsureWallet", ctx, mock.Anything, int64(2), "DZD").Return(nil).Once()
		env.walletRepo.On("EnsureWallet", ctx, mock.Anything, int64(1), "DZD").Return(nil).Once()
		env.walletRepo.On("GetWalletForUpdate", ctx, mock.Anything, int64(1)).Return(actorWallet, nil).Once()
		env.walletRepo.On("GetWalletForUpdate", ctx, mock.Anything, int64(2)).Return(targetWallet, nil).Once()

		result, err := env.service.ApplyMutation(ctx, actor, 2, domain.MutationCash, amount, "")

		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		assert.Nil(t, result)
		env.walletRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		env.ledgerRepo.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything, mock.Anything)
		env.txController.AssertNotCalled(t, "Commit")
		env.assertAll(t)
	})

	t.Run("CreditRaisesBalanceAndDebt", func(t *testing.T) {
		ctx := context.Background()
		env := newLedgerTestEnv()
		actor := domain.Actor{AccountID: 3, Role: domain.RoleRetailer}
		wallet := &domain.Wallet{AccountID: 3, Currency: "DZD", Balance: decimal.Zero}
		updated := &domain.Wallet{AccountID: 3, Currency: "DZD", Balance: amount, Debt: amount}

		env.txController.On("Commit").Return(nil).Once()
		env.txController.On("Rollback").Return(nil).Maybe()
		env.walletRepo.On("EnsureWallet", ctx, mock.Anything, int64(3), "DZD").Return(nil).Once()
		env.walletRepo.On("GetWalletForUpdate", ctx, mock.Anything, int64(3)).Return(wallet, nil).Once()
		env.walletRepo.On("AdjustBalance", ctx, mock.Anything, int64(3), amount).Return(nil).Once()
		env.walletRepo.On("AdjustDebt", ctx, mock.Anything, int64(3), amount).Return(nil).Once()
		env.ledgerRepo.On("CreateEntry", ctx, mock.Anything, mock.MatchedBy(func(e *domain.LedgerEntry) bool {
			return e.Kind == domain.EntryKindDeposit && e.Amount.Equal(amount)
		})).Return(nil).Once()
		env.walletRepo.On("GetWalletByAccountID", ctx, mock.Anything, int64(3)).Return(updated, nil).Once()

		result, err := env.service.ApplyMutation(ctx, actor, 3, domain.MutationCredit, amount, "")

		assert.NoError(t, err)
		assert.True(t, result.NewDebt.Equal(amount))
		env.assertAll(t)
	})

	t.Run("RepayLowersDebt", func(t *testing.T) {
		ctx := context.Background()
		env := newLedgerTestEnv()
		actor := domain.Actor{AccountID: 3, Role: domain.RoleRetailer}
		wallet := &domain.Wallet{AccountID: 3, Currency: "DZD", Balance: amount, Debt: amount}
		updated := &domain.Wallet{AccountID: 3, Currency: "DZD", Balance: amount, Debt: decimal.Zero}

		env.txController.On("Commit").Return(nil).Once()
		env.txController.On("Rollback").Return(nil).Maybe()
		env.walletRepo.On("EnsureWallet", ctx, mock.Anything, int64(3), "DZD").Return(nil).Once()
		env.walletRepo.On("GetWalletForUpdate", ctx, mock.Anything, int64(3)).Return(wallet, nil).Once()
		env.walletRepo.On("AdjustDebt", ctx, mock.Anything, int64(3), amount.Neg()).Return(nil).Once()
		env.ledgerRepo.On("CreateEntry", ctx, mock.Anything, mock.MatchedBy(func(e *domain.LedgerEntry) bool {
			return e.Kind == domain.EntryKindDebtRepayment && e.Amount.Equal(amount)
		})).Return(nil).Once()
		env.walletRepo.On("GetWalletByAccountID", ctx, mock.Anything, int64(3)).Return(updated, nil).Once()

		result, err := env.service.ApplyMutation(ctx, actor, 3, domain.MutationRepay, amount, "")

		assert.NoError(t, err)
		assert.True(t, result.NewDebt.IsZero())
		env.assertAll(t)
	})

	t.Run("DeductRequiresAdmin", func(t *testing.T) {
		ctx := context.Background()
		env := newLedgerTestEnv()
		actor := domain.Actor{AccountID: 3, Role: domain.RoleRetailer}

		result, err := env.service.ApplyMutation(ctx, actor, 3, domain.MutationDeduct, amount, "")

		assert.ErrorIs(t, err, util.ErrUnauthorized)
		assert.Nil(t, result)
		env.txController.AssertNotCalled(t, "Commit")
		env.txController.AssertNotCalled(t, "Rollback")
		env.assertAll(t)
	})

	t.Run("DeductLogsNegativeAmount", func(t *testing.T) {
		ctx := context.Background()
		env := newLedgerTestEnv()
		actor := domain.Actor{AccountID: 99, Role: domain.RoleAdmin}
		wallet := &domain.Wallet{AccountID: 5, Currency: "DZD", Balance: decimal.NewFromInt(2000)}
		updated := &domain.Wallet{AccountID: 5, Currency: "DZD", Balance: decimal.NewFromInt(1000)}

		env.txController.On("Commit").Return(nil).Once()
		env.txController.On("Rollback").Return(nil).Maybe()
		env.walletRepo.On("EnsureWallet", ctx, mock.Anything, int64(5), "DZD").Return(nil).Once()
		env.walletRepo.On("GetWalletForUpdate", ctx, mock.Anything, int64(5)).Return(wallet, nil).Once()
		env.walletRepo.On("AdjustBalance", ctx, mock.Anything, int64(5), amount.Neg()).Return(nil).Once()
		env.ledgerRepo.On("CreateEntry", ctx, mock.Anything, mock.MatchedBy(func(e *domain.LedgerEntry) bool {
			return e.Kind == domain.EntryKindAdjustment && e.Amount.Equal(amount.Neg()) && e.PerformedBy == 99
		})).Return(nil).Once()
		env.walletRepo.On("GetWalletByAccountID", ctx, mock.Anything, int64(5)).Return(updated, nil).Once()

		_, err := env.service.ApplyMutation(ctx, actor, 5, domain.MutationDeduct, amount, "correction")

		assert.NoError(t, err)
		env.assertAll(t)
	})

	t.Run("SetLogsSignedDelta", func(t *testing.T) {
		ctx := context.Background()
		env := newLedgerTestEnv()
		actor := domain.Actor{AccountID: 99, Role: domain.RoleAdmin}
		wallet := &domain.Wallet{AccountID: 5, Currency: "DZD", Balance: decimal.NewFromInt(500)}
		target := decimal.NewFromInt(200)
		updated := &domain.Wallet{AccountID: 5, Currency: "DZD", Balance: target}

		env.txController.On("Commit").Return(nil).Once()
		env.txController.On("Rollback").Return(nil).Maybe()
		env.walletRepo.On("EnsureWallet", ctx, mock.Anything, int64(5), "DZD").Return(nil).Once()
		env.walletRepo.On("GetWalletForUpdate", ctx, mock.Anything, int64(5)).Return(wallet, nil).Once()
		env.walletRepo.On("SetBalance", ctx, mock.Anything, int64(5), target).Return(nil).Once()
		env.ledgerRepo.On("CreateEntry", ctx, mock.Anything, mock.MatchedBy(func(e *domain.LedgerEntry) bool {
			return e.Kind == domain.EntryKindAdjustment && e.Amount.Equal(decimal.NewFromInt(-300))
		})).Return(nil).Once()
		env.walletRepo.On("GetWalletByAccountID", ctx, mock.Anything, int64(5)).Return(updated, nil).Once()

		result, err := env.service.ApplyMutation(ctx, actor, 5, domain.MutationSet, target, "")

		assert.NoError(t, err)
		assert.True(t, result.NewBalance.Equal(target))
		env.assertAll(t)
	})

	t.Run("SetToZeroAllowed", func(t *testing.T) {
		ctx := context.Background()
		env := newLedgerTestEnv()
		actor := domain.Actor{AccountID: 99, Role: domain.RoleAdmin}
		wallet := &domain.Wallet{AccountID: 5, Currency: "DZD", Balance: decimal.NewFromInt(500)}
		updated := &domain.Wallet{AccountID: 5, Currency: "DZD", Balance: decimal.Zero}

		env.txController.On("Commit").Return(nil).Once()
		env.txController.On("Rollback").Return(nil).Maybe()
		env.walletRepo.On("EnsureWallet", ctx, mock.Anything, int64(5), "DZD").Return(nil).Once()
		env.walletRepo.On("GetWalletForUpdate", ctx, mock.Anything, int64(5)).Return(wallet, nil).Once()
		env.walletRepo.On("SetBalance", ctx, mock.Anything, int64(5), decimal.Zero).Return(nil).Once()
		env.ledgerRepo.On("CreateEntry", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		env.walletRepo.On("GetWalletByAccountID", ctx, mock.Anything, int64(5)).Return(updated, nil).Once()

		_, err := env.service.ApplyMutation(ctx, actor, 5, domain.MutationSet, decimal.Zero, "")

		assert.NoError(t, err)
		env.assertAll(t)
	})

	t.Run("InvalidKind", func(t *testing.T) {
		ctx := context.Background()
		env := newLedgerTestEnv()
		actor := domain.Actor{AccountID: 1, Role: domain.RoleAdmin}

		result, err := env.service.ApplyMutation(ctx, actor, 1, "withdraw", amount, "")

		assert.ErrorIs(t, err, util.ErrInvalidInput)
		assert.Nil(t, result)
		env.assertAll(t)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		ctx := context.Background()
		env := newLedgerTestEnv()
		actor := domain.Actor{AccountID: 1, Role: domain.RoleAdmin}

		result, err := env.service.ApplyMutation(ctx, actor, 1, domain.MutationCash, decimal.Zero, "")

		assert.ErrorIs(t, err, util.ErrInvalidInput)
		assert.Nil(t, result)
		env.assertAll(t)
	})
}

func TestGetWallet(t *testing.T) {
	t.Run("MapsNotFound", func(t *testing.T) {
		ctx := context.Background()
		env := newLedgerTestEnv()

		env.walletRepo.On("GetWalletByAccountID", ctx, mock.Anything, int64(42)).Return(nil, util.ErrNotFound).Once()

		wallet, err := env.service.GetWallet(ctx, 42)

		assert.ErrorIs(t, err, util.ErrWalletNotFound)
		assert.Nil(t, wallet)
		env.assertAll(t)
	})
}

func TestGetHistory(t *testing.T) {
	t.Run("PassesPagination", func(t *testing.T) {
		ctx := context.Background()
		env := newLedgerTestEnv()
		entries := []domain.LedgerEntry{{ID: 1, AccountID: 42}}

		env.ledgerRepo.On("ListEntriesByAccount", ctx, mock.Anything, int64(42), 10, 20).Return(entries, int64(35), nil).Once()

		got, total, err := env.service.GetHistory(ctx, 42, 10, 20)

		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, int64(35), total)
		env.assertAll(t)
	})
}
