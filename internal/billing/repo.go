package billing

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/fechouapp/fechou-backend/pkg/db/models"
	"github.com/fechouapp/fechou-backend/pkg/enums"
)

// Repository handles plan catalog persistence.
type Repository interface {
	ListPlans(ctx context.Context, status *enums.PlanStatus) ([]models.BillingPlan, error)
	FindPlanByID(ctx context.Context, id string) (*models.BillingPlan, error)
	FindPlanByPriceID(ctx context.Context, priceID string) (*models.BillingPlan, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListPlans(ctx context.Context, status *enums.PlanStatus) ([]models.BillingPlan, error) {
	query := r.db.WithContext(ctx).Model(&models.BillingPlan{}).Order("price_amount ASC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var plans []models.BillingPlan
	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) FindPlanByID(ctx context.Context, id string) (*models.BillingPlan, error) {
	var plan models.BillingPlan
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&plan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repository) FindPlanByPriceID(ctx context.Context, priceID string) (*models.BillingPlan, error) {
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return nil, nil
	}
	var plan models.BillingPlan
	if err := r.db.WithContext(ctx).
		Where("stripe_price_id = ?", priceID).
		First(&plan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}
