// internal/service/registry_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"recharge-core/internal/domain"
	"recharge-core/internal/repository"
	"recharge-core/internal/util"

	"github.com/shopspring/decimal"
)

// RegistryService covers the administrative surface of the SIM registry and
// the offer catalog: provisioning, listing, balance estimate refresh, offer
// management and operator template overrides. All writes are admin-only.
type RegistryService interface {
	ProvisionSIM(ctx context.Context, actor domain.Actor, operator, phoneNumber, pin string, kind domain.TransportKind, address string) (*domain.SIM, error)
	ListSIMs(ctx context.Context) ([]domain.SIM, error)
	RefreshSIMBalance(ctx context.Context, actor domain.Actor, simID int64, balance decimal.Decimal) error
	CreateOffer(ctx context.Context, actor domain.Actor, operator, name string, price decimal.Decimal, commandTemplate string) (*domain.Offer, error)
	ListOffers(ctx context.Context) ([]domain.Offer, error)
	GetOperatorTemplate(ctx context.Context, operator string) (*domain.OperatorTemplate, error)
	SetOperatorTemplate(ctx context.Context, actor domain.Actor, operator, template string) error
}

type registryService struct {
	dbExecutor  repository.DBExecutor
	simRepo     repository.SIMRepository
	catalogRepo repository.CatalogRepository
}

// NewRegistryService creates a new instance of RegistryService.
func NewRegistryService(dbExecutor repository.DBExecutor, simRepo repository.SIMRepository, catalogRepo repository.CatalogRepository) RegistryService {
	return &registryService{
		dbExecutor:  dbExecutor,
		simRepo:     simRepo,
		catalogRepo: catalogRepo,
	}
}

func (s *registryService) ProvisionSIM(ctx context.Context, actor domain.Actor, operator, phoneNumber, pin string, kind domain.TransportKind, address string) (*domain.SIM, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, util.ErrUnauthorized
	}
	if operator == "" || phoneNumber == "" || address == "" {
		return nil, util.ErrInvalidInput
	}
	if kind != domain.TransportSimulated && kind != domain.TransportNetwork {
		return nil, fmt.Errorf("unknown transport kind %q: %w", kind, util.ErrInvalidInput)
	}

	sim := domain.NewSIM(operator, phoneNumber, pin, kind, address)
	if err := s.simRepo.CreateSIM(ctx, s.dbExecutor, sim); err != nil {
		return nil, fmt.Errorf("provision sim: %w", err)
	}
	return sim, nil
}

func (s *registryService) ListSIMs(ctx context.Context) ([]domain.SIM, error) {
	sims, err := s.simRepo.ListSIMs(ctx, s.dbExecutor)
	if err != nil {
		return nil, fmt.Errorf("list sims: %w", err)
	}
	return sims, nil
}

func (s *registryService) RefreshSIMBalance(ctx context.Context, actor domain.Actor, simID int64, balance decimal.Decimal) error {
	if actor.Role != domain.RoleAdmin {
		return util.ErrUnauthorized
	}
	if balance.IsNegative() {
		return util.ErrInvalidInput
	}
	if err := s.simRepo.UpdateBalanceEstimate(ctx, s.dbExecutor, simID, balance); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return util.ErrNotFound
		}
		return fmt.Errorf("refresh sim balance: %w", err)
	}
	return nil
}

func (s *registryService) CreateOffer(ctx context.Context, actor domain.Actor, operator, name string, price decimal.Decimal, commandTemplate string) (*domain.Offer, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, util.ErrUnauthorized
	}
	if operator == "" || name == "" || commandTemplate == "" || price.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	offer := &domain.Offer{
		Operator:        operator,
		Name:            name,
		Price:           price,
		CommandTemplate: commandTemplate,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.catalogRepo.CreateOffer(ctx, s.dbExecutor, offer); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	return offer, nil
}

func (s *registryService) ListOffers(ctx context.Context) ([]domain.Offer, error) {
	offers, err := s.catalogRepo.ListOffers(ctx, s.dbExecutor)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offers, nil
}

func (s *registryService) GetOperatorTemplate(ctx context.Context, operator string) (*domain.OperatorTemplate, error) {
	tmpl, err := s.catalogRepo.GetOperatorTemplate(ctx, s.dbExecutor, operator)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("get operator template: %w", err)
	}
	return tmpl, nil
}

func (s *registryService) SetOperatorTemplate(ctx context.Context, actor domain.Actor, operator, template string) error {
	if actor.Role != domain.RoleAdmin {
		return util.ErrUnauthorized
	}
	if operator == "" || template == "" {
		return util.ErrInvalidInput
	}
	tmpl := &domain.OperatorTemplate{
		Operator:  operator,
		Template:  template,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.catalogRepo.UpsertOperatorTemplate(ctx, s.dbExecutor, tmpl); err != nil {
		return fmt.Errorf("set operator template: %w", err)
	}
	return nil
}
