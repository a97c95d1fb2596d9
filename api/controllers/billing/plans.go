package billing

import (
	"context"
	"net/http"
	"time"

	"github.com/fechouapp/fechou-backend/api/responses"
	"github.com/fechouapp/fechou-backend/pkg/db/models"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
	"github.com/fechouapp/fechou-backend/pkg/logger"
)

// PlanService describes the catalog methods used by the HTTP controllers.
type PlanService interface {
	ListActivePlans(ctx context.Context) ([]models.BillingPlan, error)
}

type planResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Status           string   `json:"status"`
	StripePriceID    string   `json:"stripe_price_id"`
	IsDefault        bool     `json:"is_default"`
	PriceAmount      string   `json:"price_amount"`
	PriceAmountCents int64    `json:"price_amount_cents"`
	CurrencyCode     string   `json:"currency_code"`
	Features         []string `json:"features"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

type planListResponse struct {
	Plans []planResponse `json:"plans"`
}

func PlansList(svc PlanService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing plan service unavailable"))
			return
		}

		plans, err := svc.ListActivePlans(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		response := planListResponse{Plans: make([]planResponse, 0, len(plans))}
		for i := range plans {
			response.Plans = append(response.Plans, planToResponse(&plans[i]))
		}
		responses.WriteSuccess(w, response)
	}
}

func planToResponse(plan *models.BillingPlan) planResponse {
	features := make([]string, len(plan.Features))
	copy(features, plan.Features)

	return planResponse{
		ID:               plan.ID,
		Name:             plan.Name.String(),
		Status:           plan.Status.String(),
		StripePriceID:    plan.StripePriceID,
		IsDefault:        plan.IsDefault,
		PriceAmount:      plan.PriceAmount.StringFixed(2),
		PriceAmountCents: plan.PriceAmount.Shift(2).IntPart(),
		CurrencyCode:     plan.CurrencyCode,
		Features:         features,
		CreatedAt:        plan.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        plan.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
