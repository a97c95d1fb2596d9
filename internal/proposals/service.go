package proposals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fechouapp/fechou-backend/pkg/db/models"
	"github.com/fechouapp/fechou-backend/pkg/enums"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
	"github.com/fechouapp/fechou-backend/pkg/logger"
	"github.com/fechouapp/fechou-backend/pkg/pagination"
)

type entitlementGate interface {
	CheckConsume(ctx context.Context, accountID uuid.UUID, kind enums.ResourceKind) error
	RecordConsumption(ctx context.Context, accountID uuid.UUID, kind enums.ResourceKind) error
}

// CreateProposalInput holds the validated payload to create a proposal.
type CreateProposalInput struct {
	ClientName         string
	ClientEmail        string
	Title              string
	ServiceDescription string
	Amount             decimal.Decimal
	ValidityDays       int
}

// ListProposalsInput paginates the account's proposals.
type ListProposalsInput struct {
	AccountID uuid.UUID
	Limit     int
	Cursor    string
}

// ServiceParams groups dependencies for the proposal service.
type ServiceParams struct {
	Repo         Repository
	Entitlements entitlementGate
	Logger       *logger.Logger
}

// Service exposes proposal management gated by the account's plan.
type Service struct {
	repo         Repository
	entitlements entitlementGate
	logg         *logger.Logger
}

// NewService constructs a proposal service instance.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("proposal repository required")
	}
	if params.Entitlements == nil {
		return nil, fmt.Errorf("entitlement service required")
	}
	return &Service{
		repo:         params.Repo,
		entitlements: params.Entitlements,
		logg:         params.Logger,
	}, nil
}

// Create persists a proposal after the plan check passes. The usage counter is
// bumped after the insert; a failed bump never rolls the proposal back.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, input CreateProposalInput) (*ProposalDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}
	if err := s.entitlements.CheckConsume(ctx, accountID, enums.ResourceProposal); err != nil {
		return nil, err
	}

	proposal := &models.Proposal{
		ID:                 uuid.New(),
		AccountID:          accountID,
		ClientName:         strings.TrimSpace(input.ClientName),
		ClientEmail:        strings.TrimSpace(input.ClientEmail),
		Title:              strings.TrimSpace(input.Title),
		ServiceDescription: input.ServiceDescription,
		Amount:             input.Amount,
		ValidityDays:       input.ValidityDays,
		Status:             enums.ProposalStatusDraft,
	}
	if proposal.ValidityDays <= 0 {
		proposal.ValidityDays = 15
	}
	if err := s.repo.Create(ctx, proposal); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert proposal")
	}

	if err := s.entitlements.RecordConsumption(ctx, accountID, enums.ResourceProposal); err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"account_id":  accountID.String(),
			"proposal_id": proposal.ID.String(),
		})
		s.logg.Error(logCtx, "proposal created but usage counter not incremented", err)
	}
	return NewProposalDTO(proposal), nil
}

// Get returns a single proposal owned by the account.
func (s *Service) Get(ctx context.Context, accountID, proposalID uuid.UUID) (*ProposalDTO, error) {
	proposal, err := s.repo.FindByID(ctx, accountID, proposalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load proposal")
	}
	if proposal == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proposal not found")
	}
	return NewProposalDTO(proposal), nil
}

// List returns one page of the account's proposals, newest first.
func (s *Service) List(ctx context.Context, input ListProposalsInput) (*ProposalListResult, error) {
	if input.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	proposals, next, err := s.repo.List(ctx, ListQuery{
		AccountID: input.AccountID,
		Limit:     input.Limit,
		Cursor:    cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list proposals")
	}

	result := &ProposalListResult{Proposals: make([]ProposalDTO, 0, len(proposals))}
	for i := range proposals {
		result.Proposals = append(result.Proposals, *NewProposalDTO(&proposals[i]))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// UpdateStatus moves the proposal through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, accountID, proposalID uuid.UUID, status enums.ProposalStatus) (*ProposalDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown proposal status %q", status))
	}
	proposal, err := s.repo.FindByID(ctx, accountID, proposalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load proposal")
	}
	if proposal == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proposal not found")
	}

	proposal.Status = status
	if err := s.repo.Update(ctx, proposal); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update proposal")
	}
	return NewProposalDTO(proposal), nil
}

// Delete soft-deletes the proposal. Deleting never refunds quota; usage counts
// creations in the cycle, not live rows.
func (s *Service) Delete(ctx context.Context, accountID, proposalID uuid.UUID) error {
	if err := s.repo.Delete(ctx, accountID, proposalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "proposal not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete proposal")
	}
	return nil
}

func validateCreateInput(input CreateProposalInput) error {
	if strings.TrimSpace(input.ClientName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "client_name is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}
	return nil
}
