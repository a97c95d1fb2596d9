package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fechouapp/fechou-backend/api/middleware"
	"github.com/fechouapp/fechou-backend/api/responses"
	"github.com/fechouapp/fechou-backend/api/validators"
	"github.com/fechouapp/fechou-backend/internal/contracts"
	"github.com/fechouapp/fechou-backend/pkg/enums"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
	"github.com/fechouapp/fechou-backend/pkg/logger"
	"github.com/fechouapp/fechou-backend/pkg/pagination"
)

// ContractService describes the contract methods used by the HTTP controllers.
type ContractService interface {
	Create(ctx context.Context, accountID uuid.UUID, input contracts.CreateContractInput) (*contracts.ContractDTO, error)
	Get(ctx context.Context, accountID, contractID uuid.UUID) (*contracts.ContractDTO, error)
	List(ctx context.Context, input contracts.ListContractsInput) (*contracts.ContractListResult, error)
	UpdateStatus(ctx context.Context, accountID, contractID uuid.UUID, status enums.ContractStatus) (*contracts.ContractDTO, error)
	Delete(ctx context.Context, accountID, contractID uuid.UUID) error
}

type createContractRequest struct {
	ContractorName string `json:"contractor_name" validate:"required,min=2,max=120"`
	ClientName     string `json:"client_name" validate:"required,min=2,max=120"`
	ClientDocument string `json:"client_document" validate:"max=20"`
	Object         string `json:"object" validate:"required,min=3,max=8000"`
	Amount         string `json:"amount" validate:"required"`
	PaymentTerms   string `json:"payment_terms" validate:"max=2000"`
	City           string `json:"city" validate:"max=120"`
}

type updateContractStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func ContractCreate(svc ContractService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		var payload createContractRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(payload.Amount))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a decimal string"))
			return
		}

		dto, err := svc.Create(ctx, middleware.AccountIDFromContext(ctx), contracts.CreateContractInput{
			ContractorName: payload.ContractorName,
			ClientName:     payload.ClientName,
			ClientDocument: payload.ClientDocument,
			Object:         payload.Object,
			Amount:         amount,
			PaymentTerms:   payload.PaymentTerms,
			City:           payload.City,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ContractList(svc ContractService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.List(ctx, contracts.ListContractsInput{
			AccountID: middleware.AccountIDFromContext(ctx),
			Limit:     limit,
			Cursor:    r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ContractDetail(svc ContractService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		contractID, err := parseIDParam(r, "contractId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Get(ctx, middleware.AccountIDFromContext(ctx), contractID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ContractUpdateStatus(svc ContractService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		contractID, err := parseIDParam(r, "contractId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateContractStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := enums.ParseContractStatus(payload.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		dto, err := svc.UpdateStatus(ctx, middleware.AccountIDFromContext(ctx), contractID, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ContractDelete(svc ContractService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		contractID, err := parseIDParam(r, "contractId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, middleware.AccountIDFromContext(ctx), contractID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
