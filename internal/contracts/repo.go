package contracts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fechouapp/fechou-backend/pkg/db/models"
	"github.com/fechouapp/fechou-backend/pkg/pagination"
)

// ListQuery narrows and paginates the account's contracts.
type ListQuery struct {
	AccountID uuid.UUID
	Limit     int
	Cursor    *pagination.Cursor
}

// Repository handles contract persistence.
type Repository interface {
	Create(ctx context.Context, contract *models.Contract) error
	FindByID(ctx context.Context, accountID, id uuid.UUID) (*models.Contract, error)
	List(ctx context.Context, query ListQuery) ([]models.Contract, *pagination.Cursor, error)
	Update(ctx context.Context, contract *models.Contract) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a contract repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *repository) FindByID(ctx context.Context, accountID, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		First(&contract).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Contract, *pagination.Cursor, error) {
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

	var contracts []models.Contract
	if err := q.Find(&contracts).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(contracts) > limit {
		contracts = contracts[:limit]
		last := contracts[len(contracts)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return contracts, next, nil
}

func (r *repository) Update(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

func (r *repository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		Delete(&models.Contract{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
