package billing

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/fechouapp/fechou-backend/api/middleware"
	"github.com/fechouapp/fechou-backend/api/responses"
	"github.com/fechouapp/fechou-backend/internal/entitlements"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
	"github.com/fechouapp/fechou-backend/pkg/logger"
)

// UsageService describes the entitlement methods used by the HTTP controllers.
type UsageService interface {
	Usage(ctx context.Context, accountID uuid.UUID) (*entitlements.UsageSummary, error)
}

func UsageSummary(svc UsageService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entitlement service unavailable"))
			return
		}

		summary, err := svc.Usage(ctx, middleware.AccountIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
