package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/fechouapp/fechou-backend/pkg/enums"
)

// BillingPlan captures the catalog metadata for a subscription tier,
// including the Stripe price that purchases it.
type BillingPlan struct {
	ID            string           `gorm:"column:id;primaryKey"`
	Name          enums.PlanName   `gorm:"column:name;not null"`
	Status        enums.PlanStatus `gorm:"column:status;not null"`
	StripePriceID string           `gorm:"column:stripe_price_id;not null;uniqueIndex"`
	IsDefault     bool             `gorm:"column:is_default;not null;default:false"`
	PriceAmount   decimal.Decimal  `gorm:"column:price_amount;type:numeric(12,2);not null"`
	CurrencyCode  string           `gorm:"column:currency_code;not null;default:'BRL'"`
	Features      pq.StringArray   `gorm:"column:features;type:text[];default:ARRAY[]::text[]"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
