// internal/repository/catalog_repo.go
package repository

import (
	"context"

	"recharge-core/internal/domain"
)

// CatalogRepository defines the interface for the offer catalog and the
// administrator-set operator command templates.
type CatalogRepository interface {
	// CreateOffer adds a new offer and populates its ID.
	CreateOffer(ctx context.Context, q DBExecutor, offer *domain.Offer) error
	// GetOfferByID retrieves an offer by id. Returns util.ErrNotFound if absent.
	GetOfferByID(ctx context.Context, q DBExecutor, id int64) (*domain.Offer, error)
	// ListOffers returns all offers.
	ListOffers(ctx context.Context, q DBExecutor) ([]domain.Offer, error)
	// GetOperatorTemplate retrieves the template override for an operator.
	// Returns util.ErrNotFound when no override is configured.
	GetOperatorTemplate(ctx context.Context, q DBExecutor, operator string) (*domain.OperatorTemplate, error)
	// UpsertOperatorTemplate creates or replaces the override for an operator.
	UpsertOperatorTemplate(ctx context.Context, q DBExecutor, tmpl *domain.OperatorTemplate) error
}
