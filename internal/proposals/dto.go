package proposals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fechouapp/fechou-backend/pkg/db/models"
)

// ProposalDTO is the proposal payload returned to clients.
type ProposalDTO struct {
	ID                 uuid.UUID       `json:"id"`
	ClientName         string          `json:"client_name"`
	ClientEmail        string          `json:"client_email,omitempty"`
	Title              string          `json:"title"`
	ServiceDescription string          `json:"service_description,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	ValidityDays       int             `json:"validity_days"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ProposalListResult carries one page of proposals plus the next cursor.
type ProposalListResult struct {
	Proposals  []ProposalDTO `json:"proposals"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// NewProposalDTO builds a DTO from the persisted model.
func NewProposalDTO(proposal *models.Proposal) *ProposalDTO {
	return &ProposalDTO{
		ID:                 proposal.ID,
		ClientName:         proposal.ClientName,
		ClientEmail:        proposal.ClientEmail,
		Title:              proposal.Title,
		ServiceDescription: proposal.ServiceDescription,
		Amount:             proposal.Amount,
		ValidityDays:       proposal.ValidityDays,
		Status:             proposal.Status.String(),
		CreatedAt:          proposal.CreatedAt,
		UpdatedAt:          proposal.UpdatedAt,
	}
}
