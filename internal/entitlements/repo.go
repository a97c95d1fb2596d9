package entitlements

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fechouapp/fechou-backend/pkg/db"
	"github.com/fechouapp/fechou-backend/pkg/db/models"
	"github.com/fechouapp/fechou-backend/pkg/enums"
)

// usageColumns maps each resource kind onto its counter column exactly once,
// so increments never build column names from request input.
var usageColumns = map[enums.ResourceKind]string{
	enums.ResourceProposal:  "proposals_used_this_cycle",
	enums.ResourceContract:  "contracts_used_this_cycle",
	enums.ResourceAIMessage: "ai_messages_used_this_cycle",
}

// Repository handles subscription persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByAccount(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error)
	EnsureDefault(ctx context.Context, accountID uuid.UUID, now time.Time) (*models.Subscription, error)
	IncrementUsage(ctx context.Context, accountID uuid.UUID, kind enums.ResourceKind) error
	ApplyTransition(ctx context.Context, accountID uuid.UUID, plan enums.PlanName, eventID string, now time.Time) error
	ResetCyclesBefore(ctx context.Context, cutoff, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a subscription repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByAccount(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&sub).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// EnsureDefault returns the stored subscription or creates the Free default
// with zeroed counters. A concurrent insert losing the unique-index race falls
// back to reading the winner's row.
func (r *repository) EnsureDefault(ctx context.Context, accountID uuid.UUID, now time.Time) (*models.Subscription, error) {
	if accountID == uuid.Nil {
		return nil, gorm.ErrInvalidValue
	}

	sub := models.Subscription{
		ID:          uuid.New(),
		AccountID:   accountID,
		Plan:        enums.PlanFree,
		Status:      enums.SubscriptionStatusActive,
		LastResetAt: now.UTC(),
	}
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		FirstOrCreate(&sub).Error
	if err != nil {
		if !db.IsUniqueViolation(err) {
			return nil, err
		}
		// Lost the insert race; the winner's row is there now.
		var winner models.Subscription
		if err := r.db.WithContext(ctx).
			Where("account_id = ?", accountID).
			First(&winner).Error; err != nil {
			return nil, err
		}
		return &winner, nil
	}
	return &sub, nil
}

// IncrementUsage adds one unit to the counter for kind as a single storage-side
// update, so overlapping requests never lose increments.
func (r *repository) IncrementUsage(ctx context.Context, accountID uuid.UUID, kind enums.ResourceKind) error {
	column, ok := usageColumns[kind]
	if !ok {
		return fmt.Errorf("unknown resource kind %q", kind)
	}

	res := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("account_id = ?", accountID).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ApplyTransition moves the account to the new plan and starts a fresh cycle
// in a single UPDATE: counters zeroed, reset timestamp advanced and the
// payment event recorded.
func (r *repository) ApplyTransition(ctx context.Context, accountID uuid.UUID, plan enums.PlanName, eventID string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"plan":                        plan,
			"status":                      enums.SubscriptionStatusActive,
			"proposals_used_this_cycle":   0,
			"contracts_used_this_cycle":   0,
			"ai_messages_used_this_cycle": 0,
			"last_reset_at":               now.UTC(),
			"last_payment_event_id":       eventID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ResetCyclesBefore zeroes the counters of every subscription whose cycle
// started at or before cutoff and advances its reset timestamp.
func (r *repository) ResetCyclesBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("last_reset_at <= ?", cutoff.UTC()).
		Updates(map[string]any{
			"proposals_used_this_cycle":   0,
			"contracts_used_this_cycle":   0,
			"ai_messages_used_this_cycle": 0,
			"last_reset_at":               now.UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
