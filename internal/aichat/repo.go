package aichat

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fechouapp/fechou-backend/pkg/db/models"
)

// Repository handles chat message persistence.
type Repository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	ListRecent(ctx context.Context, accountID uuid.UUID, limit int) ([]models.ChatMessage, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a chat message repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListRecent returns the newest messages in chronological order.
func (r *repository) ListRecent(ctx context.Context, accountID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
