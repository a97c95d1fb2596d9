package billing

import (
	"context"
	"fmt"

	"github.com/fechouapp/fechou-backend/pkg/db/models"
	"github.com/fechouapp/fechou-backend/pkg/enums"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
)

// Service exposes the plan catalog to controllers and to the entitlement
// engine's price-id mapping.
type Service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("billing repo required")
	}
	return &Service{repo: repo}, nil
}

// ListActivePlans returns the purchasable tiers ordered by price.
func (s *Service) ListActivePlans(ctx context.Context) ([]models.BillingPlan, error) {
	status := enums.PlanStatusActive
	plans, err := s.repo.ListPlans(ctx, &status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list billing plans")
	}
	return plans, nil
}

// FindPlanByID returns the catalog row for the plan identifier.
func (s *Service) FindPlanByID(ctx context.Context, id string) (*models.BillingPlan, error) {
	plan, err := s.repo.FindPlanByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load billing plan")
	}
	if plan == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "billing plan not found")
	}
	return plan, nil
}

// PlanForPriceID maps a Stripe price onto a plan name. The boolean reports
// whether the price is known; unknown prices are not an error here so the
// caller can fall back or reject.
func (s *Service) PlanForPriceID(ctx context.Context, priceID string) (enums.PlanName, bool, error) {
	plan, err := s.repo.FindPlanByPriceID(ctx, priceID)
	if err != nil {
		return "", false, err
	}
	if plan == nil {
		return "", false, nil
	}
	return plan.Name, true, nil
}
