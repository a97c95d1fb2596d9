package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/fechouapp/fechou-backend/internal/entitlements"
	"github.com/fechouapp/fechou-backend/pkg/db/models"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
)

type stubApplier struct {
	applied []entitlements.PaymentEvent
	err     error
	errOnce bool
}

func (s *stubApplier) ApplyPayment(ctx context.Context, event entitlements.PaymentEvent) (*models.Subscription, error) {
	if s.err != nil {
		err := s.err
		if s.errOnce {
			s.err = nil
		}
		return nil, err
	}
	s.applied = append(s.applied, event)
	return &models.Subscription{AccountID: event.AccountID}, nil
}

func checkoutEvent(t *testing.T, eventID string, accountID uuid.UUID, priceID string, amount int64) *stripe.Event {
	t.Helper()

	session := map[string]any{
		"id":           "cs_test_123",
		"amount_total": amount,
		"metadata": map[string]string{
			"account_id": accountID.String(),
			"price_id":   priceID,
		},
	}
	raw, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	return &stripe.Event{
		ID:   eventID,
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEventAppliesCheckout(t *testing.T) {
	applier := &stubApplier{}
	svc, err := NewService(ServiceParams{Entitlements: applier})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	accountID := uuid.New()
	event := checkoutEvent(t, "evt_1", accountID, "price_pro_monthly", 4990)
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(applier.applied) != 1 {
		t.Fatalf("expected one payment applied, got %d", len(applier.applied))
	}
	payment := applier.applied[0]
	if payment.EventID != "evt_1" || payment.AccountID != accountID {
		t.Fatalf("unexpected payment event: %+v", payment)
	}
	if payment.PriceID != "price_pro_monthly" || payment.AmountCents != 4990 {
		t.Fatalf("unexpected payment mapping: %+v", payment)
	}
}

func TestHandleEventIgnoresOtherTypes(t *testing.T) {
	applier := &stubApplier{}
	svc, _ := NewService(ServiceParams{Entitlements: applier})

	event := &stripe.Event{
		ID:   "evt_other",
		Type: stripe.EventTypeInvoicePaid,
		Data: &stripe.EventData{Raw: []byte(`{}`)},
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(applier.applied) != 0 {
		t.Fatal("expected no payment applied for unrelated event type")
	}
}

func TestHandleEventMissingAccountMetadata(t *testing.T) {
	applier := &stubApplier{}
	svc, _ := NewService(ServiceParams{Entitlements: applier})

	event := &stripe.Event{
		ID:   "evt_bad",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: []byte(`{"id":"cs_1","amount_total":4990,"metadata":{}}`)},
	}
	err := svc.HandleEvent(context.Background(), event)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHandleEventRetriesTransientFailure(t *testing.T) {
	applier := &stubApplier{
		err:     pkgerrors.New(pkgerrors.CodeDependency, "db timeout"),
		errOnce: true,
	}
	svc, _ := NewService(ServiceParams{Entitlements: applier})

	event := checkoutEvent(t, "evt_retry", uuid.New(), "price_pro_monthly", 4990)
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if len(applier.applied) != 1 {
		t.Fatalf("expected one payment applied after retry, got %d", len(applier.applied))
	}
}

func TestHandleEventDoesNotRetryValidationFailure(t *testing.T) {
	applier := &stubApplier{err: pkgerrors.New(pkgerrors.CodeValidation, "payment does not map to a known plan")}
	svc, _ := NewService(ServiceParams{Entitlements: applier})

	event := checkoutEvent(t, "evt_invalid", uuid.New(), "", 0)
	err := svc.HandleEvent(context.Background(), event)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHandleEventRequiresData(t *testing.T) {
	svc, _ := NewService(ServiceParams{Entitlements: &stubApplier{}})

	if err := svc.HandleEvent(context.Background(), nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
