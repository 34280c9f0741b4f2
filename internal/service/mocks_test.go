// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"

	"recharge-core/internal/domain"
	"recharge-core/internal/events"
	"recharge-core/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController. It embeds
// MockDBExecutor so the service can cast it to repository.DBExecutor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) EnsureWallet(ctx context.Context, q repository.DBExecutor, accountID int64, currency string) error {
	args := m.Called(ctx, q, accountID, currency)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWalletByAccountID(ctx context.Context, q repository.DBExecutor, accountID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWalletForUpdate(ctx context.Context, q repository.DBExecutor, accountID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, accountID int64, delta decimal.Decimal) error {
	args := m.Called(ctx, q, accountID, delta)
	return args.Error(0)
}

func (m *MockWalletRepository) AdjustDebt(ctx context.Context, q repository.DBExecutor, accountID int64, delta decimal.Decimal) error {
	args := m.Called(ctx, q, accountID, delta)
	return args.Error(0)
}

func (m *MockWalletRepository) SetBalance(ctx context.Context, q repository.DBExecutor, accountID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, q, accountID, amount)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of repository.LedgerRepository.
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) CreateEntry(ctx context.Context, q repository.DBExecutor, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, q, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) MarkCompleted(ctx context.Context, q repository.DBExecutor, entryID int64, responseMessage string, simID int64) error {
	args := m.Called(ctx, q, entryID, responseMessage, simID)
	return args.Error(0)
}

func (m *MockLedgerRepository) MarkFailed(ctx context.Context, q repository.DBExecutor, entryID int64, errorMessage string) error {
	args := m.Called(ctx, q, entryID, errorMessage)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetEntryByID(ctx context.Context, q repository.DBExecutor, entryID int64) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, q, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListEntriesByAccount(ctx context.Context, q repository.DBExecutor, accountID int64, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	args := m.Called(ctx, q, accountID, limit, offset)
	return args.Get(0).([]domain.LedgerEntry), args.Get(1).(int64), args.Error(2)
}

// MockSIMRepository is a mock implementation of repository.SIMRepository.
type MockSIMRepository struct {
	mock.Mock
}

func (m *MockSIMRepository) CreateSIM(ctx context.Context, q repository.DBExecutor, sim *domain.SIM) error {
	args := m.Called(ctx, q, sim)
	return args.Error(0)
}

func (m *MockSIMRepository) GetSIMByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.SIM, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SIM), args.Error(1)
}

func (m *MockSIMRepository) ListSIMs(ctx context.Context, q repository.DBExecutor) ([]domain.SIM, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.SIM), args.Error(1)
}

func (m *MockSIMRepository) ClaimActiveSIM(ctx context.Context, q repository.DBExecutor, operator string) (*domain.SIM, error) {
	args := m.Called(ctx, q, operator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SIM), args.Error(1)
}

func (m *MockSIMRepository) MarkActive(ctx context.Context, q repository.DBExecutor, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *MockSIMRepository) IncrementUsage(ctx context.Context, q repository.DBExecutor, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *MockSIMRepository) UpdateBalanceEstimate(ctx context.Context, q repository.DBExecutor, id int64, balance decimal.Decimal) error {
	args := m.Called(ctx, q, id, balance)
	return args.Error(0)
}

// MockCatalogRepository is a mock implementation of repository.CatalogRepository.
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) CreateOffer(ctx context.Context, q repository.DBExecutor, offer *domain.Offer) error {
	args := m.Called(ctx, q, offer)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetOfferByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Offer, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}

func (m *MockCatalogRepository) ListOffers(ctx context.Context, q repository.DBExecutor) ([]domain.Offer, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.Offer), args.Error(1)
}

func (m *MockCatalogRepository) GetOperatorTemplate(ctx context.Context, q repository.DBExecutor, operator string) (*domain.OperatorTemplate, error) {
	args := m.Called(ctx, q, operator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OperatorTemplate), args.Error(1)
}

func (m *MockCatalogRepository) UpsertOperatorTemplate(ctx context.Context, q repository.DBExecutor, tmpl *domain.OperatorTemplate) error {
	args := m.Called(ctx, q, tmpl)
	return args.Error(0)
}

// MockGateway is a mock implementation of gateway.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Send(ctx context.Context, sim *domain.SIM, command string) (domain.DispatchResult, error) {
	args := m.Called(ctx, sim, command)
	return args.Get(0).(domain.DispatchResult), args.Error(1)
}

// MockAccountLocker is a mock implementation of lock.AccountLocker.
type MockAccountLocker struct {
	mock.Mock
}

func (m *MockAccountLocker) Acquire(ctx context.Context, accountID int64) (func(), error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishRechargeResult(event events.RechargeEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
