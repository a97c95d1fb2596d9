package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fechouapp/fechou-backend/pkg/enums"
)

// Contract is a service contract generated by an account.
type Contract struct {
	ID             uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID      uuid.UUID            `gorm:"column:account_id;type:uuid;not null;index"`
	ContractorName string               `gorm:"column:contractor_name;not null"`
	ClientName     string               `gorm:"column:client_name;not null"`
	ClientDocument string               `gorm:"column:client_document;not null;default:''"`
	Object         string               `gorm:"column:object;not null"`
	Amount         decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`
	PaymentTerms   string               `gorm:"column:payment_terms;not null;default:''"`
	City           string               `gorm:"column:city;not null;default:''"`
	Status         enums.ContractStatus `gorm:"column:status;not null;default:'draft'"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt      gorm.DeletedAt       `gorm:"column:deleted_at;index"`
}
