package proposals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fechouapp/fechou-backend/pkg/db/models"
	"github.com/fechouapp/fechou-backend/pkg/pagination"
)

// ListQuery narrows and paginates the account's proposals.
type ListQuery struct {
	AccountID uuid.UUID
	Limit     int
	Cursor    *pagination.Cursor
}

// Repository handles proposal persistence.
type Repository interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	FindByID(ctx context.Context, accountID, id uuid.UUID) (*models.Proposal, error)
	List(ctx context.Context, query ListQuery) ([]models.Proposal, *pagination.Cursor, error)
	Update(ctx context.Context, proposal *models.Proposal) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a proposal repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, proposal *models.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *repository) FindByID(ctx context.Context, accountID, id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		First(&proposal).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Proposal, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)

	q := r.db.WithContext(ctx).
		Where("account_id = ?", query.AccountID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)
	if query.Cursor != nil {
		q = q.Where(
			"(created_at, id) < (?, ?)",
			query.Cursor.CreatedAt, query.Cursor.ID,
		)
	}

	var proposals []models.Proposal
	if err := q.Find(&proposals).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(proposals) > limit {
		proposals = proposals[:limit]
		last := proposals[len(proposals)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return proposals, next, nil
}

func (r *repository) Update(ctx context.Context, proposal *models.Proposal) error {
	return r.db.WithContext(ctx).Save(proposal).Error
}

func (r *repository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		Delete(&models.Proposal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
