package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fechouapp/fechou-backend/api/middleware"
	"github.com/fechouapp/fechou-backend/api/responses"
	"github.com/fechouapp/fechou-backend/api/validators"
	"github.com/fechouapp/fechou-backend/internal/proposals"
	"github.com/fechouapp/fechou-backend/pkg/enums"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
	"github.com/fechouapp/fechou-backend/pkg/logger"
	"github.com/fechouapp/fechou-backend/pkg/pagination"
)

// ProposalService describes the proposal methods used by the HTTP controllers.
type ProposalService interface {
	Create(ctx context.Context, accountID uuid.UUID, input proposals.CreateProposalInput) (*proposals.ProposalDTO, error)
	Get(ctx context.Context, accountID, proposalID uuid.UUID) (*proposals.ProposalDTO, error)
	List(ctx context.Context, input proposals.ListProposalsInput) (*proposals.ProposalListResult, error)
	UpdateStatus(ctx context.Context, accountID, proposalID uuid.UUID, status enums.ProposalStatus) (*proposals.ProposalDTO, error)
	Delete(ctx context.Context, accountID, proposalID uuid.UUID) error
}

type createProposalRequest struct {
	ClientName         string `json:"client_name" validate:"required,min=2,max=120"`
	ClientEmail        string `json:"client_email" validate:"omitempty,email"`
	Title              string `json:"title" validate:"required,min=3,max=200"`
	ServiceDescription string `json:"service_description" validate:"max=8000"`
	Amount             string `json:"amount" validate:"required"`
	ValidityDays       int    `json:"validity_days" validate:"omitempty,min=1,max=365"`
}

type updateProposalStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func ProposalCreate(svc ProposalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		var payload createProposalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(payload.Amount))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a decimal string"))
			return
		}

		dto, err := svc.Create(ctx, middleware.AccountIDFromContext(ctx), proposals.CreateProposalInput{
			ClientName:         payload.ClientName,
			ClientEmail:        payload.ClientEmail,
			Title:              payload.Title,
			ServiceDescription: payload.ServiceDescription,
			Amount:             amount,
			ValidityDays:       payload.ValidityDays,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ProposalList(svc ProposalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.List(ctx, proposals.ListProposalsInput{
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

func ProposalDetail(svc ProposalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		proposalID, err := parseIDParam(r, "proposalId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Get(ctx, middleware.AccountIDFromContext(ctx), proposalID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProposalUpdateStatus(svc ProposalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		proposalID, err := parseIDParam(r, "proposalId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateProposalStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := enums.ParseProposalStatus(payload.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		dto, err := svc.UpdateStatus(ctx, middleware.AccountIDFromContext(ctx), proposalID, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProposalDelete(svc ProposalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		proposalID, err := parseIDParam(r, "proposalId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, middleware.AccountIDFromContext(ctx), proposalID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" must be a valid uuid")
	}
	return id, nil
}
