package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fechouapp/fechou-backend/pkg/enums"
)

// Subscription holds one plan assignment plus the usage counters for the
// current cycle. Exactly one row exists per account.
type Subscription struct {
	ID                 uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID          uuid.UUID                `gorm:"column:account_id;type:uuid;not null;uniqueIndex"`
	Plan               enums.PlanName           `gorm:"column:plan;not null;default:'Free'"`
	Status             enums.SubscriptionStatus `gorm:"column:status;not null;default:'active'"`
	ProposalsUsed      int64                    `gorm:"column:proposals_used_this_cycle;not null;default:0"`
	ContractsUsed      int64                    `gorm:"column:contracts_used_this_cycle;not null;default:0"`
	AIMessagesUsed     int64                    `gorm:"column:ai_messages_used_this_cycle;not null;default:0"`
	LastResetAt        time.Time                `gorm:"column:last_reset_at;not null"`
	LastPaymentEventID string                   `gorm:"column:last_payment_event_id;not null;default:''"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
