package entitlements

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fechouapp/fechou-backend/pkg/db/models"
	"github.com/fechouapp/fechou-backend/pkg/enums"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
	"github.com/fechouapp/fechou-backend/pkg/logger"
	"github.com/fechouapp/fechou-backend/pkg/metrics"
)

const defaultCycleLength = 30 * 24 * time.Hour

type planCatalog interface {
	PlanForPriceID(ctx context.Context, priceID string) (enums.PlanName, bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PaymentEvent is the normalized "payment completed" notification consumed by
// the plan transition. EventID is the processor's event identifier and doubles
// as the idempotency key.
type PaymentEvent struct {
	EventID     string
	AccountID   uuid.UUID
	PriceID     string
	AmountCents int64
}

// UsageItem reports one resource kind's consumption against its allowance.
type UsageItem struct {
	Kind      enums.ResourceKind `json:"kind"`
	Used      int64              `json:"used"`
	Limit     int64              `json:"limit"`
	Unlimited bool               `json:"unlimited"`
}

// UsageSummary is the per-account entitlement snapshot served to the UI.
type UsageSummary struct {
	Plan        enums.PlanName           `json:"plan"`
	Status      enums.SubscriptionStatus `json:"status"`
	LastResetAt time.Time                `json:"last_reset_at"`
	Items       []UsageItem              `json:"items"`
}

// ServiceParams groups dependencies for the entitlement service.
type ServiceParams struct {
	Repo                Repository
	Catalog             planCatalog
	TransactionRunner   txRunner
	Logger              *logger.Logger
	Metrics             *metrics.UsageMetrics
	BusinessAmountCents int64
	CycleLength         time.Duration
}

// Service owns the quota table, entitlement checks, usage bookkeeping and plan
// transitions for account subscriptions.
type Service struct {
	repo        Repository
	catalog     planCatalog
	txRunner    txRunner
	logg        *logger.Logger
	usage       *metrics.UsageMetrics
	threshold   int64
	cycleLength time.Duration
}

// NewService builds an entitlement service with the required dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("subscription repo required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.BusinessAmountCents <= 0 {
		return nil, fmt.Errorf("business amount threshold must be positive")
	}
	cycle := params.CycleLength
	if cycle <= 0 {
		cycle = defaultCycleLength
	}
	return &Service{
		repo:        params.Repo,
		catalog:     params.Catalog,
		txRunner:    params.TransactionRunner,
		logg:        params.Logger,
		usage:       params.Metrics,
		threshold:   params.BusinessAmountCents,
		cycleLength: cycle,
	}, nil
}

// Get returns the account's subscription, creating the Free default on first
// sight of an account without one.
func (s *Service) Get(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	sub, err := s.repo.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if sub != nil {
		return sub, nil
	}
	sub, err = s.repo.EnsureDefault(ctx, accountID, time.Now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create default subscription")
	}
	return sub, nil
}

// CheckConsume gates one unit of consumption. Store failures block the action
// (fail closed); quota exhaustion returns a QuotaExceeded error carrying the
// current count and limit so the UI can render the upgrade prompt.
func (s *Service) CheckConsume(ctx context.Context, accountID uuid.UUID, kind enums.ResourceKind) error {
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown resource kind %q", kind))
	}
	sub, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if CanConsume(sub, kind) {
		return nil
	}

	quota := QuotaFor(sub.Plan, kind)
	s.usage.IncDenied(sub.Plan.String(), kind.String())
	return pkgerrors.New(pkgerrors.CodeQuotaExceeded, fmt.Sprintf("monthly %s limit reached", kind)).
		WithDetails(map[string]any{
			"kind":  kind.String(),
			"plan":  sub.Plan.String(),
			"used":  UsedCount(sub, kind),
			"limit": int64(quota),
		})
}

// RecordConsumption adds one unit to the counter for kind. Call it only after
// the resource was durably created; callers treat failures here as best-effort
// because the resource already exists.
func (s *Service) RecordConsumption(ctx context.Context, accountID uuid.UUID, kind enums.ResourceKind) error {
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown resource kind %q", kind))
	}
	sub, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.repo.IncrementUsage(ctx, accountID, kind); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment usage counter")
	}
	s.usage.IncRecorded(sub.Plan.String(), kind.String())
	return nil
}

// Usage returns the current plan plus per-kind used/limit pairs.
func (s *Service) Usage(ctx context.Context, accountID uuid.UUID) (*UsageSummary, error) {
	sub, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	summary := &UsageSummary{
		Plan:        sub.Plan,
		Status:      sub.Status,
		LastResetAt: sub.LastResetAt,
	}
	for _, kind := range enums.ResourceKinds() {
		quota := QuotaFor(sub.Plan, kind)
		summary.Items = append(summary.Items, UsageItem{
			Kind:      kind,
			Used:      UsedCount(sub, kind),
			Limit:     int64(quota),
			Unlimited: quota.IsUnlimited(),
		})
	}
	return summary, nil
}

// ApplyPayment moves the account to the tier purchased by the payment event,
// zeroing the usage counters and stamping the event id. Re-delivery of an
// already-applied event is a no-op so usage recorded after the first
// application survives.
func (s *Service) ApplyPayment(ctx context.Context, event PaymentEvent) (*models.Subscription, error) {
	if strings.TrimSpace(event.EventID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment event id is required")
	}
	if event.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment event account id is required")
	}

	plan, err := s.planForPayment(ctx, event)
	if err != nil {
		return nil, err
	}

	var result *models.Subscription
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		sub, err := txRepo.EnsureDefault(ctx, event.AccountID, time.Now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
		}
		if sub.LastPaymentEventID == event.EventID {
			if s.logg != nil {
				s.logg.Info(s.logg.WithField(ctx, "payment_event_id", event.EventID), "payment event already applied; skipping")
			}
			result = sub
			return nil
		}

		now := time.Now()
		if err := txRepo.ApplyTransition(ctx, event.AccountID, plan, event.EventID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply plan transition")
		}

		updated, err := txRepo.FindByAccount(ctx, event.AccountID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload subscription")
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"account_id":       event.AccountID.String(),
			"plan":             plan.String(),
			"payment_event_id": event.EventID,
		})
		s.logg.Info(ctx, "subscription plan updated")
	}
	return result, nil
}

// planForPayment resolves the purchased tier: the catalog's price-id mapping
// is authoritative; the amount threshold only covers payments without a
// recognizable price. Unmappable payments are rejected, never defaulted.
func (s *Service) planForPayment(ctx context.Context, event PaymentEvent) (enums.PlanName, error) {
	if s.catalog != nil && strings.TrimSpace(event.PriceID) != "" {
		plan, found, err := s.catalog.PlanForPriceID(ctx, event.PriceID)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve plan for price")
		}
		if found {
			return plan, nil
		}
	}

	switch {
	case event.AmountCents >= s.threshold:
		return enums.PlanBusiness, nil
	case event.AmountCents > 0:
		return enums.PlanProfessional, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payment does not map to a known plan").
			WithDetails(map[string]any{
				"price_id":     event.PriceID,
				"amount_cents": event.AmountCents,
			})
	}
}

// ResetExpiredCycles starts a fresh cycle for every subscription whose window
// elapsed. Invoked by the cron worker; the read path never self-resets.
func (s *Service) ResetExpiredCycles(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-s.cycleLength)
	reset, err := s.repo.ResetCyclesBefore(ctx, cutoff, now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset usage cycles")
	}
	return reset, nil
}
