// internal/repository/sim_repo.go
package repository

import (
	"context"

	"recharge-core/internal/domain"

	"github.com/shopspring/decimal"
)

// SIMRepository defines the interface for SIM registry operations.
type SIMRepository interface {
	// CreateSIM provisions a new SIM entry and populates its ID.
	CreateSIM(ctx context.Context, q DBExecutor, sim *domain.SIM) error
	// GetSIMByID retrieves a SIM by id.
	GetSIMByID(ctx context.Context, q DBExecutor, id int64) (*domain.SIM, error)
	// ListSIMs returns all SIM entries in registration order.
	ListSIMs(ctx context.Context, q DBExecutor) ([]domain.SIM, error)
	// ClaimActiveSIM atomically selects the first active SIM for the operator
	// and flips it to busy. Returns util.ErrNoActiveSIM when none matches.
	ClaimActiveSIM(ctx context.Context, q DBExecutor, operator string) (*domain.SIM, error)
	// MarkActive flips a SIM back to active. Idempotent.
	MarkActive(ctx context.Context, q DBExecutor, id int64) error
	// IncrementUsage bumps the SIM's dispatch counter.
	IncrementUsage(ctx context.Context, q DBExecutor, id int64) error
	// UpdateBalanceEstimate stores a refreshed balance estimate for the line.
	UpdateBalanceEstimate(ctx context.Context, q DBExecutor, id int64, balance decimal.Decimal) error
}
