package entitlements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fechouapp/fechou-backend/pkg/db/models"
	"github.com/fechouapp/fechou-backend/pkg/enums"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
)

type stubRepo struct {
	sub          *models.Subscription
	findErr      error
	incrementErr error

	ensured     int
	increments  []enums.ResourceKind
	transitions []enums.PlanName
	resetCount  int64
	resetErr    error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) FindByAccount(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.sub, nil
}

func (s *stubRepo) EnsureDefault(ctx context.Context, accountID uuid.UUID, now time.Time) (*models.Subscription, error) {
	s.ensured++
	if s.sub == nil {
		s.sub = &models.Subscription{
			ID:          uuid.New(),
			AccountID:   accountID,
			Plan:        enums.PlanFree,
			Status:      enums.SubscriptionStatusActive,
			LastResetAt: now,
		}
	}
	return s.sub, nil
}

func (s *stubRepo) IncrementUsage(ctx context.Context, accountID uuid.UUID, kind enums.ResourceKind) error {
	if s.incrementErr != nil {
		return s.incrementErr
	}
	s.increments = append(s.increments, kind)
	return nil
}

func (s *stubRepo) ApplyTransition(ctx context.Context, accountID uuid.UUID, plan enums.PlanName, eventID string, now time.Time) error {
	s.transitions = append(s.transitions, plan)
	s.sub.Plan = plan
	s.sub.Status = enums.SubscriptionStatusActive
	s.sub.ProposalsUsed = 0
	s.sub.ContractsUsed = 0
	s.sub.AIMessagesUsed = 0
	s.sub.LastResetAt = now
	s.sub.LastPaymentEventID = eventID
	return nil
}

func (s *stubRepo) ResetCyclesBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	if s.resetErr != nil {
		return 0, s.resetErr
	}
	return s.resetCount, nil
}

type stubCatalog struct {
	plans map[string]enums.PlanName
	err   error
}

func (s *stubCatalog) PlanForPriceID(ctx context.Context, priceID string) (enums.PlanName, bool, error) {
	if s.err != nil {
		return "", false, s.err
	}
	plan, ok := s.plans[priceID]
	return plan, ok, nil
}

type stubTxRunner struct{}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *stubRepo, catalog *stubCatalog) *Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Repo:                repo,
		Catalog:             catalog,
		TransactionRunner:   &stubTxRunner{},
		BusinessAmountCents: 10000,
	})
	if err != nil {
		t.Fatalf("unexpected error building service: %v", err)
	}
	return svc
}

func freeSub(accountID uuid.UUID) *models.Subscription {
	return &models.Subscription{
		ID:          uuid.New(),
		AccountID:   accountID,
		Plan:        enums.PlanFree,
		Status:      enums.SubscriptionStatusActive,
		LastResetAt: time.Now().UTC(),
	}
}

func TestCheckConsumeAllowsUnderQuota(t *testing.T) {
	accountID := uuid.New()
	sub := freeSub(accountID)
	sub.ProposalsUsed = 2
	svc := newTestService(t, &stubRepo{sub: sub}, nil)

	if err := svc.CheckConsume(context.Background(), accountID, enums.ResourceProposal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckConsumeBlocksAtQuota(t *testing.T) {
	accountID := uuid.New()
	sub := freeSub(accountID)
	sub.ProposalsUsed = 3
	svc := newTestService(t, &stubRepo{sub: sub}, nil)

	err := svc.CheckConsume(context.Background(), accountID, enums.ResourceProposal)
	if err == nil {
		t.Fatal("expected quota error")
	}
	coded := pkgerrors.As(err)
	if coded.Code() != pkgerrors.CodeQuotaExceeded {
		t.Fatalf("expected quota exceeded, got %v", coded.Code())
	}
	details, ok := coded.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected map details, got %T", coded.Details())
	}
	if details["used"] != int64(3) || details["limit"] != int64(3) {
		t.Fatalf("expected used/limit 3/3 in details, got %v", details)
	}
}

func TestCheckConsumeBusinessNeverBlocks(t *testing.T) {
	accountID := uuid.New()
	sub := freeSub(accountID)
	sub.Plan = enums.PlanBusiness
	sub.AIMessagesUsed = 999999
	svc := newTestService(t, &stubRepo{sub: sub}, nil)

	if err := svc.CheckConsume(context.Background(), accountID, enums.ResourceAIMessage); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckConsumeFailsClosedOnStoreError(t *testing.T) {
	accountID := uuid.New()
	repo := &stubRepo{findErr: errors.New("connection refused")}
	svc := newTestService(t, repo, nil)

	err := svc.CheckConsume(context.Background(), accountID, enums.ResourceProposal)
	if err == nil {
		t.Fatal("expected store error to block consumption")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestCheckConsumeRejectsUnknownKind(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, nil)

	err := svc.CheckConsume(context.Background(), uuid.New(), enums.ResourceKind("widgets"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetCreatesDefaultSubscription(t *testing.T) {
	accountID := uuid.New()
	repo := &stubRepo{}
	svc := newTestService(t, repo, nil)

	sub, err := svc.Get(context.Background(), accountID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.ensured != 1 {
		t.Fatalf("expected one EnsureDefault call, got %d", repo.ensured)
	}
	if sub.Plan != enums.PlanFree {
		t.Fatalf("expected Free default, got %s", sub.Plan)
	}
	if sub.ProposalsUsed != 0 || sub.ContractsUsed != 0 || sub.AIMessagesUsed != 0 {
		t.Fatal("expected zeroed counters on default subscription")
	}
}

func TestRecordConsumptionIncrements(t *testing.T) {
	accountID := uuid.New()
	repo := &stubRepo{sub: freeSub(accountID)}
	svc := newTestService(t, repo, nil)

	if err := svc.RecordConsumption(context.Background(), accountID, enums.ResourceContract); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.increments) != 1 || repo.increments[0] != enums.ResourceContract {
		t.Fatalf("expected one contract increment, got %v", repo.increments)
	}
}

func TestRecordConsumptionSurfacesStoreError(t *testing.T) {
	accountID := uuid.New()
	repo := &stubRepo{sub: freeSub(accountID), incrementErr: errors.New("write timeout")}
	svc := newTestService(t, repo, nil)

	err := svc.RecordConsumption(context.Background(), accountID, enums.ResourceProposal)
	if err == nil {
		t.Fatal("expected increment error to surface")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestUsageSummary(t *testing.T) {
	accountID := uuid.New()
	sub := freeSub(accountID)
	sub.Plan = enums.PlanProfessional
	sub.ProposalsUsed = 42
	svc := newTestService(t, &stubRepo{sub: sub}, nil)

	summary, err := svc.Usage(context.Background(), accountID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Plan != enums.PlanProfessional {
		t.Fatalf("expected Professional, got %s", summary.Plan)
	}
	if len(summary.Items) != len(enums.ResourceKinds()) {
		t.Fatalf("expected one item per resource kind, got %d", len(summary.Items))
	}
	for _, item := range summary.Items {
		if item.Kind == enums.ResourceProposal {
			if item.Used != 42 || item.Limit != 100 || item.Unlimited {
				t.Fatalf("unexpected proposal item: %+v", item)
			}
		}
	}
}

func TestApplyPaymentMapsPriceID(t *testing.T) {
	accountID := uuid.New()
	repo := &stubRepo{sub: freeSub(accountID)}
	repo.sub.ProposalsUsed = 3
	catalog := &stubCatalog{plans: map[string]enums.PlanName{
		"price_pro_monthly": enums.PlanProfessional,
	}}
	svc := newTestService(t, repo, catalog)

	sub, err := svc.ApplyPayment(context.Background(), PaymentEvent{
		EventID:     "evt_123",
		AccountID:   accountID,
		PriceID:     "price_pro_monthly",
		AmountCents: 4990,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Plan != enums.PlanProfessional {
		t.Fatalf("expected Professional, got %s", sub.Plan)
	}
	if sub.ProposalsUsed != 0 {
		t.Fatal("expected counters reset on transition")
	}
	if sub.LastPaymentEventID != "evt_123" {
		t.Fatalf("expected event id recorded, got %q", sub.LastPaymentEventID)
	}
}

func TestApplyPaymentThresholdFallback(t *testing.T) {
	accountID := uuid.New()
	repo := &stubRepo{sub: freeSub(accountID)}
	svc := newTestService(t, repo, &stubCatalog{})

	sub, err := svc.ApplyPayment(context.Background(), PaymentEvent{
		EventID:     "evt_biz",
		AccountID:   accountID,
		PriceID:     "price_unknown",
		AmountCents: 10000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Plan != enums.PlanBusiness {
		t.Fatalf("expected Business at threshold, got %s", sub.Plan)
	}

	sub, err = svc.ApplyPayment(context.Background(), PaymentEvent{
		EventID:     "evt_pro",
		AccountID:   accountID,
		AmountCents: 4990,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Plan != enums.PlanProfessional {
		t.Fatalf("expected Professional below threshold, got %s", sub.Plan)
	}
}

func TestApplyPaymentRejectsUnmappable(t *testing.T) {
	accountID := uuid.New()
	repo := &stubRepo{sub: freeSub(accountID)}
	svc := newTestService(t, repo, &stubCatalog{})

	_, err := svc.ApplyPayment(context.Background(), PaymentEvent{
		EventID:     "evt_zero",
		AccountID:   accountID,
		AmountCents: 0,
	})
	if err == nil {
		t.Fatal("expected unmappable payment to be rejected")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.transitions) != 0 {
		t.Fatal("expected no transition for rejected payment")
	}
}

func TestApplyPaymentIdempotentOnRedelivery(t *testing.T) {
	accountID := uuid.New()
	repo := &stubRepo{sub: freeSub(accountID)}
	catalog := &stubCatalog{plans: map[string]enums.PlanName{
		"price_pro_monthly": enums.PlanProfessional,
	}}
	svc := newTestService(t, repo, catalog)

	event := PaymentEvent{
		EventID:   "evt_dup",
		AccountID: accountID,
		PriceID:   "price_pro_monthly",
	}
	if _, err := svc.ApplyPayment(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Usage recorded after the first application must survive re-delivery.
	repo.sub.ProposalsUsed = 5

	sub, err := svc.ApplyPayment(context.Background(), event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.transitions) != 1 {
		t.Fatalf("expected exactly one transition, got %d", len(repo.transitions))
	}
	if sub.ProposalsUsed != 5 {
		t.Fatalf("expected usage preserved on redelivery, got %d", sub.ProposalsUsed)
	}
}

func TestApplyPaymentValidation(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, nil)

	if _, err := svc.ApplyPayment(context.Background(), PaymentEvent{AccountID: uuid.New()}); err == nil {
		t.Fatal("expected missing event id to fail")
	}
	if _, err := svc.ApplyPayment(context.Background(), PaymentEvent{EventID: "evt_1"}); err == nil {
		t.Fatal("expected missing account id to fail")
	}
}

func TestResetExpiredCycles(t *testing.T) {
	repo := &stubRepo{resetCount: 7}
	svc := newTestService(t, repo, nil)

	reset, err := svc.ResetExpiredCycles(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reset != 7 {
		t.Fatalf("expected 7 resets, got %d", reset)
	}
}
