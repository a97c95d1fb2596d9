package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fechouapp/fechou-backend/pkg/enums"
)

// Proposal is a commercial proposal drafted by an account for a client.
type Proposal struct {
	ID                 uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID          uuid.UUID            `gorm:"column:account_id;type:uuid;not null;index"`
	ClientName         string               `gorm:"column:client_name;not null"`
	ClientEmail        string               `gorm:"column:client_email;not null;default:''"`
	Title              string               `gorm:"column:title;not null"`
	ServiceDescription string               `gorm:"column:service_description;not null;default:''"`
	Amount             decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`
	ValidityDays       int                  `gorm:"column:validity_days;not null;default:15"`
	Status             enums.ProposalStatus `gorm:"column:status;not null;default:'draft'"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt          gorm.DeletedAt       `gorm:"column:deleted_at;index"`
}
