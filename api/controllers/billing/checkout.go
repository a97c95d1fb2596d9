package billing

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/fechouapp/fechou-backend/api/middleware"
	"github.com/fechouapp/fechou-backend/api/responses"
	"github.com/fechouapp/fechou-backend/api/validators"
	"github.com/fechouapp/fechou-backend/internal/checkout"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
	"github.com/fechouapp/fechou-backend/pkg/logger"
)

// CheckoutService describes the checkout methods used by the HTTP controllers.
type CheckoutService interface {
	CreateSession(ctx context.Context, accountID uuid.UUID, planID string) (*checkout.Session, error)
}

type createCheckoutRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

func CheckoutCreate(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload createCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		session, err := svc.CreateSession(ctx, middleware.AccountIDFromContext(ctx), payload.PlanID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}
