// internal/repository/postgres/catalog_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"recharge-core/internal/domain"
	"recharge-core/internal/repository"
	"recharge-core/internal/util"

	"github.com/jmoiron/sqlx"
)

// CatalogRepository implements repository.CatalogRepository for PostgreSQL.
type CatalogRepository struct {
	// Stateless; methods receive a DBExecutor directly.
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) repository.CatalogRepository {
	return &CatalogRepository{}
}

// CreateOffer adds a new offer to the catalog.
func (r *CatalogRepository) CreateOffer(ctx context.Context, q repository.DBExecutor, offer *domain.Offer) error {
	query := `INSERT INTO offers (operator, name, price, command_template, created_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		offer.Operator, offer.Name, offer.Price, offer.CommandTemplate, offer.CreatedAt,
	).Scan(&offer.ID)
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

// GetOfferByID retrieves an offer by id.
func (r *CatalogRepository) GetOfferByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Offer, error) {
	var offer domain.Offer
	query := `SELECT id, operator, name, price, command_template, created_at
              FROM offers WHERE id = $1`
	err := q.GetContext(ctx, &offer, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get offer %d: %w", id, err)
	}
	return &offer, nil
}

// ListOffers returns all offers.
func (r *CatalogRepository) ListOffers(ctx context.Context, q repository.DBExecutor) ([]domain.Offer, error) {
	offers := []domain.Offer{}
	query := `SELECT id, operator, name, price, command_template, created_at
              FROM offers ORDER BY id`
	if err := q.SelectContext(ctx, &offers, query); err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}

// GetOperatorTemplate retrieves the flexy template override for an operator.
func (r *CatalogRepository) GetOperatorTemplate(ctx context.Context, q repository.DBExecutor, operator string) (*domain.OperatorTemplate, error) {
	var tmpl domain.OperatorTemplate
	query := `SELECT operator, template, updated_at FROM operator_templates WHERE operator = $1`
	err := q.GetContext(ctx, &tmpl, query, operator)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get template for operator %s: %w", operator, err)
	}
	return &tmpl, nil
}

// UpsertOperatorTemplate creates or replaces the override for an operator.
func (r *CatalogRepository) UpsertOperatorTemplate(ctx context.Context, q repository.DBExecutor, tmpl *domain.OperatorTemplate) error {
	query := `INSERT INTO operator_templates (operator, template, updated_at)
              VALUES ($1, $2, $3)
              ON CONFLICT (operator) DO UPDATE SET template = $2, updated_at = $3`
	if _, err := q.ExecContext(ctx, query, tmpl.Operator, tmpl.Template, tmpl.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert template for operator %s: %w", tmpl.Operator, err)
	}
	return nil
}
