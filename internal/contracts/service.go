package contracts

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

// CreateContractInput holds the validated payload to create a contract.
type CreateContractInput struct {
	ContractorName string
	ClientName     string
	ClientDocument string
	Object         string
	Amount         decimal.Decimal
	PaymentTerms   string
	City           string
}

// ListContractsInput paginates the account's contracts.
type ListContractsInput struct {
	AccountID uuid.UUID
	Limit     int
	Cursor    string
}

// ServiceParams groups dependencies for the contract service.
type ServiceParams struct {
	Repo         Repository
	Entitlements entitlementGate
	Logger       *logger.Logger
}

// Service exposes contract management gated by the account's plan.
type Service struct {
	repo         Repository
	entitlements entitlementGate
	logg         *logger.Logger
}

// NewService constructs a contract service instance.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("contract repository required")
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

// Create persists a contract after the plan check passes. The usage counter is
// bumped after the insert; a failed bump never rolls the contract back.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, input CreateContractInput) (*ContractDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}
	if err := s.entitlements.CheckConsume(ctx, accountID, enums.ResourceContract); err != nil {
		return nil, err
	}

	contract := &models.Contract{
		ID:             uuid.New(),
		AccountID:      accountID,
		ContractorName: strings.TrimSpace(input.ContractorName),
		ClientName:     strings.TrimSpace(input.ClientName),
		ClientDocument: strings.TrimSpace(input.ClientDocument),
		Object:         strings.TrimSpace(input.Object),
		Amount:         input.Amount,
		PaymentTerms:   input.PaymentTerms,
		City:           strings.TrimSpace(input.City),
		Status:         enums.ContractStatusDraft,
	}
	if err := s.repo.Create(ctx, contract); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert contract")
	}

	if err := s.entitlements.RecordConsumption(ctx, accountID, enums.ResourceContract); err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"account_id":  accountID.String(),
			"contract_id": contract.ID.String(),
		})
		s.logg.Error(logCtx, "contract created but usage counter not incremented", err)
	}
	return NewContractDTO(contract), nil
}

// Get returns a single contract owned by the account.
func (s *Service) Get(ctx context.Context, accountID, contractID uuid.UUID) (*ContractDTO, error) {
	contract, err := s.repo.FindByID(ctx, accountID, contractID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load contract")
	}
	if contract == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
	}
	return NewContractDTO(contract), nil
}

// List returns one page of the account's contracts, newest first.
func (s *Service) List(ctx context.Context, input ListContractsInput) (*ContractListResult, error) {
	if input.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	contracts, next, err := s.repo.List(ctx, ListQuery{
		AccountID: input.AccountID,
		Limit:     input.Limit,
		Cursor:    cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list contracts")
	}

	result := &ContractListResult{Contracts: make([]ContractDTO, 0, len(contracts))}
	for i := range contracts {
		result.Contracts = append(result.Contracts, *NewContractDTO(&contracts[i]))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// UpdateStatus moves the contract through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, accountID, contractID uuid.UUID, status enums.ContractStatus) (*ContractDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown contract status %q", status))
	}
	contract, err := s.repo.FindByID(ctx, accountID, contractID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load contract")
	}
	if contract == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
	}

	contract.Status = status
	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update contract")
	}
	return NewContractDTO(contract), nil
}

// Delete soft-deletes the contract without refunding quota.
func (s *Service) Delete(ctx context.Context, accountID, contractID uuid.UUID) error {
	if err := s.repo.Delete(ctx, accountID, contractID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete contract")
	}
	return nil
}

func validateCreateInput(input CreateContractInput) error {
	if strings.TrimSpace(input.ContractorName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contractor_name is required")
	}
	if strings.TrimSpace(input.ClientName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "client_name is required")
	}
	if strings.TrimSpace(input.Object) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "object is required")
	}
	if input.Amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}
	return nil
}
