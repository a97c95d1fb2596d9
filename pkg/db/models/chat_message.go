package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fechouapp/fechou-backend/pkg/enums"
)

// ChatMessage is one turn of the assistant conversation for an account.
type ChatMessage struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID      `gorm:"column:account_id;type:uuid;not null;index"`
	Role      enums.ChatRole `gorm:"column:role;not null"`
	Content   string         `gorm:"column:content;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime;index"`
}
