// internal/service/recharge_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"recharge-core/internal/domain"
	"recharge-core/internal/events"
	"recharge-core/internal/gateway"
	"recharge-core/internal/lock"
	"recharge-core/internal/repository"
	"recharge-core/internal/util"
	"recharge-core/pkg/db"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	rechargeAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recharge_attempts_total",
		Help: "Recharge attempts by flow and terminal outcome",
	}, []string{"flow", "outcome"})

	rechargeDispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recharge_dispatch_duration_seconds",
		Help:    "Latency distribution of gateway dispatches",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 10, 20},
	}, []string{"transport"})

	// Money was taken and the refund transaction could not be committed.
	// Any non-zero value here needs operator attention.
	compensationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recharge_compensation_failures_total",
		Help: "Refund transactions that could not be committed",
	})
)

// RechargeResult is the caller-facing outcome of a successful recharge.
type RechargeResult struct {
	TransactionID int64  `json:"transaction_id"`
	Message       string `json:"message"`
}

// RechargeService orchestrates flexy and offer recharges: it debits the
// requester's wallet, records a processing ledger entry, claims a SIM,
// dispatches the command through a gateway, and reconciles the outcome.
// Every attempt that reaches the processing entry reaches a terminal entry
// state before the call returns.
type RechargeService interface {
	// RechargeFlexy executes a free-amount airtime top-up.
	RechargeFlexy(ctx context.Context, actor domain.Actor, phoneNumber string, amount decimal.Decimal, operator string) (*RechargeResult, error)
	// RechargeOffer executes a fixed-price offer recharge.
	RechargeOffer(ctx context.Context, actor domain.Actor, phoneNumber string, offerID int64) (*RechargeResult, error)
}

// rechargeService implements the RechargeService interface.
type rechargeService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	walletRepo      repository.WalletRepository
	ledgerRepo      repository.LedgerRepository
	simRepo         repository.SIMRepository
	catalogRepo     repository.CatalogRepository
	gateways        map[domain.TransportKind]gateway.Gateway
	locker          lock.AccountLocker
	publisher       events.Publisher
	logger          *slog.Logger
	currency        string
	dispatchTimeout time.Duration
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewRechargeService creates a new instance of RechargeService.
func NewRechargeService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	ledgerRepo repository.LedgerRepository,
	simRepo repository.SIMRepository,
	catalogRepo repository.CatalogRepository,
	gateways map[domain.TransportKind]gateway.Gateway,
	locker lock.AccountLocker,
	publisher events.Publisher,
	logger *slog.Logger,
	currency string,
	dispatchTimeout time.Duration,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) RechargeService {
	return &rechargeService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		ledgerRepo:      ledgerRepo,
		simRepo:         simRepo,
		catalogRepo:     catalogRepo,
		gateways:        gateways,
		locker:          locker,
		publisher:       publisher,
		logger:          logger,
		currency:        currency,
		dispatchTimeout: dispatchTimeout,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// RechargeFlexy executes a free-amount top-up against the target number.
func (s *rechargeService) RechargeFlexy(ctx context.Context, actor domain.Actor, phoneNumber string, amount decimal.Decimal, operator string) (*RechargeResult, error) {
	if phoneNumber == "" || operator == "" || amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	template, err := s.flexyTemplate(ctx, operator)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("flexy %s to %s (%s)", amount.StringFixed(2), phoneNumber, operator)
	return s.recharge(ctx, actor, domain.EntryKindFlexy, phoneNumber, operator, amount, template, description)
}

// RechargeOffer executes a fixed-price offer recharge against the target number.
func (s *rechargeService) RechargeOffer(ctx context.Context, actor domain.Actor, phoneNumber string, offerID int64) (*RechargeResult, error) {
	if phoneNumber == "" || offerID <= 0 {
		return nil, util.ErrInvalidInput
	}

	offer, err := s.catalogRepo.GetOfferByID(ctx, s.dbExecutor, offerID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrOfferNotFound
		}
		return nil, fmt.Errorf("recharge offer: failed to fetch offer %d: %w", offerID, err)
	}

	description := fmt.Sprintf("offer %q to %s (%s)", offer.Name, phoneNumber, offer.Operator)
	return s.recharge(ctx, actor, domain.EntryKindOffer, phoneNumber, offer.Operator, offer.Price, offer.CommandTemplate, description)
}

// flexyTemplate resolves the flexy command template for an operator: the
// administrator override when one exists, the built-in default otherwise.
func (s *rechargeService) flexyTemplate(ctx context.Context, operator string) (string, error) {
	override, err := s.catalogRepo.GetOperatorTemplate(ctx, s.dbExecutor, operator)
	if err == nil {
		return override.Template, nil
	}
	if !util.IsError(err, util.ErrNotFound) {
		return "", fmt.Errorf("recharge flexy: failed to fetch template for %s: %w", operator, err)
	}
	template, ok := defaultFlexyTemplates[operator]
	if !ok {
		return "", fmt.Errorf("unknown operator %q: %w", operator, util.ErrInvalidInput)
	}
	return template, nil
}

// recharge runs the shared workflow:
//
//	debit + processing entry (one transaction) -> claim SIM -> render
//	command -> dispatch -> mark completed, or compensate + mark failed
//	(one transaction) on any post-debit failure.
func (s *rechargeService) recharge(ctx context.Context, actor domain.Actor, kind domain.EntryKind, phoneNumber, operator string, price decimal.Decimal, template, description string) (*RechargeResult, error) {
	flow := string(kind)

	release, err := s.locker.Acquire(ctx, actor.AccountID)
	if err != nil {
		return nil, err
	}
	defer release()

	entry, err := s.debitAndRecord(ctx, actor, kind, phoneNumber, operator, price, description)
	if err != nil {
		return nil, err
	}

	// From here on every failure must be compensated, not merely reported.
	sim, err := s.simRepo.ClaimActiveSIM(ctx, s.dbExecutor, operator)
	if err != nil {
		if util.IsError(err, util.ErrNoActiveSIM) {
			return nil, s.compensate(ctx, entry, price, flow, fmt.Sprintf("no active sim for operator %s", operator))
		}
		return nil, s.compensate(ctx, entry, price, flow, fmt.Sprintf("sim selection failed: %v", err))
	}
	defer func() {
		if err := s.simRepo.MarkActive(context.WithoutCancel(ctx), s.dbExecutor, sim.ID); err != nil {
			s.logger.Error("Failed to release sim after dispatch", "sim_id", sim.ID, "error", err)
		}
	}()

	gw, ok := s.gateways[sim.TransportKind]
	if !ok {
		return nil, s.compensate(ctx, entry, price, flow, fmt.Sprintf("no gateway for transport kind %s", sim.TransportKind))
	}

	command := renderCommand(template, phoneNumber, price.StringFixed(2), sim.PIN)

	dispatchCtx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()
	timer := prometheus.NewTimer(rechargeDispatchDuration.WithLabelValues(string(sim.TransportKind)))
	result, err := gw.Send(dispatchCtx, sim, command)
	timer.ObserveDuration()

	if err != nil {
		return nil, s.compensate(ctx, entry, price, flow, fmt.Sprintf("dispatch error: %v", err))
	}
	if !result.Success {
		return nil, s.compensate(ctx, entry, price, flow, result.Message)
	}

	if err := s.ledgerRepo.MarkCompleted(ctx, s.dbExecutor, entry.ID, result.Message, sim.ID); err != nil {
		// The dispatch succeeded; the debit stands. Surface the store failure
		// rather than refunding a delivered recharge.
		s.logger.Error("Failed to complete ledger entry after successful dispatch",
			"entry_id", entry.ID, "sim_id", sim.ID, "error", err)
		return nil, fmt.Errorf("recharge: failed to complete ledger entry %d: %w", entry.ID, err)
	}

	if err := s.simRepo.IncrementUsage(ctx, s.dbExecutor, sim.ID); err != nil {
		s.logger.Warn("Failed to increment sim usage", "sim_id", sim.ID, "error", err)
	}

	rechargeAttemptsTotal.WithLabelValues(flow, "completed").Inc()
	s.publishResult(entry, domain.StatusCompleted, price, phoneNumber, operator)

	return &RechargeResult{TransactionID: entry.ID, Message: result.Message}, nil
}

// debitAndRecord atomically checks funds, debits the requester's wallet and
// creates the processing ledger entry. An insufficient balance aborts the
// transaction with no entry created and no balance change.
func (s *rechargeService) debitAndRecord(ctx context.Context, actor domain.Actor, kind domain.EntryKind, phoneNumber, operator string, price decimal.Decimal, description string) (*domain.LedgerEntry, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("recharge: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("recharge: transaction controller does not implement DBExecutor")
	}

	if err := s.walletRepo.EnsureWallet(ctx, txExecutor, actor.AccountID, s.currency); err != nil {
		return nil, fmt.Errorf("recharge: %w", err)
	}
	wallet, err := s.walletRepo.GetWalletForUpdate(ctx, txExecutor, actor.AccountID)
	if err != nil {
		return nil, fmt.Errorf("recharge: failed to lock wallet for account %d: %w", actor.AccountID, err)
	}
	if wallet.Balance.LessThan(price) {
		return nil, util.ErrInsufficientFunds
	}

	if err := s.walletRepo.AdjustBalance(ctx, txExecutor, actor.AccountID, price.Neg()); err != nil {
		return nil, fmt.Errorf("recharge: failed to debit account %d: %w", actor.AccountID, err)
	}

	entry := domain.NewRechargeEntry(actor.AccountID, kind, price, phoneNumber, operator, description)
	if err := s.ledgerRepo.CreateEntry(ctx, txExecutor, entry); err != nil {
		return nil, fmt.Errorf("recharge: failed to create ledger entry: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("recharge: failed to commit debit transaction: %w", err)
	}
	return entry, nil
}

// compensate reverses the debit and fails the entry in one transaction.
// The refund is a pure delta of exactly the debited price, independent of
// whatever else happened to the wallet since the debit.
func (s *rechargeService) compensate(ctx context.Context, entry *domain.LedgerEntry, price decimal.Decimal, flow, reason string) error {
	// Compensation must run even when the request context is already done.
	ctx = context.WithoutCancel(ctx)

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return s.compensationFailed(entry, reason, err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return s.compensationFailed(entry, reason, fmt.Errorf("transaction controller does not implement DBExecutor"))
	}

	if err := s.walletRepo.AdjustBalance(ctx, txExecutor, entry.AccountID, price); err != nil {
		return s.compensationFailed(entry, reason, err)
	}
	if err := s.ledgerRepo.MarkFailed(ctx, txExecutor, entry.ID, reason); err != nil {
		return s.compensationFailed(entry, reason, err)
	}
	if err := s.commitTx(txController); err != nil {
		return s.compensationFailed(entry, reason, err)
	}

	rechargeAttemptsTotal.WithLabelValues(flow, "failed").Inc()
	s.publishResult(entry, domain.StatusFailed, price, derefString(entry.PhoneNumber), derefString(entry.Operator))
	s.logger.Info("Recharge failed and refunded",
		"entry_id", entry.ID, "account_id", entry.AccountID, "reason", reason)

	// The caller sees a generic failure; the detail lives on the entry.
	return fmt.Errorf("%s: %w", reason, util.ErrRechargeFailed)
}

// compensationFailed handles the one state the workflow cannot repair on its
// own: money taken and the refund not committed.
func (s *rechargeService) compensationFailed(entry *domain.LedgerEntry, reason string, err error) error {
	compensationFailuresTotal.Inc()
	s.logger.Error("COMPENSATION FAILED: debited amount not refunded, manual reconciliation required",
		"entry_id", entry.ID, "account_id", entry.AccountID,
		"amount", entry.Amount, "dispatch_failure", reason, "error", err)
	return fmt.Errorf("refund of entry %d could not be committed: %w", entry.ID, util.ErrCompensationFailed)
}

// publishResult emits a best-effort recharge result event.
func (s *rechargeService) publishResult(entry *domain.LedgerEntry, status domain.EntryStatus, price decimal.Decimal, phoneNumber, operator string) {
	event := events.RechargeEvent{
		EntryID:     entry.ID,
		AccountID:   entry.AccountID,
		Kind:        entry.Kind,
		Status:      status,
		Amount:      price.StringFixed(2),
		PhoneNumber: phoneNumber,
		Operator:    operator,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.PublishRechargeResult(event); err != nil {
		s.logger.Warn("Failed to publish recharge result event", "entry_id", entry.ID, "error", err)
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
