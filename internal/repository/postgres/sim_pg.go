// internal/repository/postgres/sim_pg.go
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

// SIMRepository implements repository.SIMRepository for PostgreSQL.
type SIMRepository struct {
	// Stateless; methods receive a DBExecutor directly.
}

// NewSIMRepository creates a new SIMRepository.
func NewSIMRepository(db *sqlx.DB) repository.SIMRepository {
	return &SIMRepository{}
}

// CreateSIM provisions a new SIM entry.
func (r *SIMRepository) CreateSIM(ctx context.Context, q repository.DBExecutor, sim *domain.SIM) error {
	query := `INSERT INTO sims
              (operator, phone_number, pin, transport_kind, transport_address,
               status, balance, usage_count, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
              RETURNING id`
	err := q.QueryRowContext(ctx, query,
		sim.Operator,
		sim.PhoneNumber,
		sim.PIN,
		sim.TransportKind,
		sim.TransportAddress,
		sim.Status,
		sim.Balance,
		sim.UsageCount,
		sim.CreatedAt,
		sim.UpdatedAt,
	).Scan(&sim.ID)
	if err != nil {
		return fmt.Errorf("failed to create sim: %w", err)
	}
	return nil
}

// GetSIMByID retrieves a SIM by id.
func (r *SIMRepository) GetSIMByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.SIM, error) {
	var sim domain.SIM
	query := `SELECT id, operator, phone_number, pin, transport_kind, transport_address,
                     status, balance, usage_count, created_at, updated_at
              FROM sims WHERE id = $1`
	err := q.GetContext(ctx, &sim, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sim %d: %w", id, err)
	}
	return &sim, nil
}

// ListSIMs returns all SIM entries in registration order.
func (r *SIMRepository) ListSIMs(ctx context.Context, q repository.DBExecutor) ([]domain.SIM, error) {
	sims := []domain.SIM{}
	query := `SELECT id, operator, phone_number, pin, transport_kind, transport_address,
                     status, balance, usage_count, created_at, updated_at
              FROM sims ORDER BY id`
	if err := q.SelectContext(ctx, &sims, query); err != nil {
		return nil, fmt.Errorf("failed to list sims: %w", err)
	}
	return sims, nil
}

// ClaimActiveSIM atomically selects the first active SIM for the operator
// (first-fit in registration order) and flips it to busy in the same
// statement. Selection and reservation being one step means two concurrent
// recharges can never dispatch through the same SIM.
func (r *SIMRepository) ClaimActiveSIM(ctx context.Context, q repository.DBExecutor, operator string) (*domain.SIM, error) {
	var sim domain.SIM
	query := `UPDATE sims SET status = $1, updated_at = $2
              WHERE id = (
                  SELECT id FROM sims
                  WHERE operator = $3 AND status = $4
                  ORDER BY id
                  LIMIT 1
                  FOR UPDATE SKIP LOCKED
              )
              RETURNING id, operator, phone_number, pin, transport_kind, transport_address,
                        status, balance, usage_count, created_at, updated_at`
	err := q.GetContext(ctx, &sim, query, domain.SIMBusy, time.Now().UTC(), operator, domain.SIMActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNoActiveSIM
		}
		return nil, fmt.Errorf("failed to claim sim for operator %s: %w", operator, err)
	}
	return &sim, nil
}

// MarkActive flips a SIM back to active. Idempotent.
func (r *SIMRepository) MarkActive(ctx context.Context, q repository.DBExecutor, id int64) error {
	query := `UPDATE sims SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := q.ExecContext(ctx, query, domain.SIMActive, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to mark sim %d active: %w", id, err)
	}
	return nil
}

// IncrementUsage bumps the SIM's dispatch counter.
func (r *SIMRepository) IncrementUsage(ctx context.Context, q repository.DBExecutor, id int64) error {
	query := `UPDATE sims SET usage_count = usage_count + 1, updated_at = $1 WHERE id = $2`
	if _, err := q.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to increment usage for sim %d: %w", id, err)
	}
	return nil
}

// UpdateBalanceEstimate stores a refreshed balance estimate for the line.
// The estimate is advisory and never consulted for ledger decisions.
func (r *SIMRepository) UpdateBalanceEstimate(ctx context.Context, q repository.DBExecutor, id int64, balance decimal.Decimal) error {
	query := `UPDATE sims SET balance = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, balance, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update balance estimate for sim %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for sim %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
