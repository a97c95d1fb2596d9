package contracts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fechouapp/fechou-backend/pkg/db/models"
)

// ContractDTO is the contract payload returned to clients.
type ContractDTO struct {
	ID             uuid.UUID       `json:"id"`
	ContractorName string          `json:"contractor_name"`
	ClientName     string          `json:"client_name"`
	ClientDocument string          `json:"client_document,omitempty"`
	Object         string          `json:"object"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentTerms   string          `json:"payment_terms,omitempty"`
	City           string          `json:"city,omitempty"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ContractListResult carries one page of contracts plus the next cursor.
type ContractListResult struct {
	Contracts  []ContractDTO `json:"contracts"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// NewContractDTO builds a DTO from the persisted model.
func NewContractDTO(contract *models.Contract) *ContractDTO {
	return &ContractDTO{
		ID:             contract.ID,
		ContractorName: contract.ContractorName,
		ClientName:     contract.ClientName,
		ClientDocument: contract.ClientDocument,
		Object:         contract.Object,
		Amount:         contract.Amount,
		PaymentTerms:   contract.PaymentTerms,
		City:           contract.City,
		Status:         contract.Status.String(),
		CreatedAt:      contract.CreatedAt,
		UpdatedAt:      contract.UpdatedAt,
	}
}
