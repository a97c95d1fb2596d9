package stripewebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/stripe/stripe-go/v84"

	"github.com/fechouapp/fechou-backend/internal/entitlements"
	"github.com/fechouapp/fechou-backend/pkg/db/models"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
	"github.com/fechouapp/fechou-backend/pkg/logger"
)

const (
	applyRetryAttempts     = 3
	applyRetryInitialPause = 200 * time.Millisecond
)

type paymentApplier interface {
	ApplyPayment(ctx context.Context, event entitlements.PaymentEvent) (*models.Subscription, error)
}

type ServiceParams struct {
	Entitlements paymentApplier
	Logger       *logger.Logger
}

// Service translates Stripe events into plan transitions.
type Service struct {
	entitlements paymentApplier
	logg         *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Entitlements == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "entitlement service required")
	}
	return &Service{
		entitlements: params.Entitlements,
		logg:         params.Logger,
	}, nil
}

// HandleEvent processes one verified Stripe event. Only completed checkouts
// change entitlements; every other event type is acknowledged untouched.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session")
		}
		return s.applyCheckout(ctx, event.ID, &session)
	default:
		return nil
	}
}

func (s *Service) applyCheckout(ctx context.Context, eventID string, session *stripe.CheckoutSession) error {
	if session == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session is required")
	}

	accountID, err := accountIDFromMetadata(session.Metadata)
	if err != nil {
		return err
	}

	payment := entitlements.PaymentEvent{
		EventID:     eventID,
		AccountID:   accountID,
		PriceID:     session.Metadata["price_id"],
		AmountCents: session.AmountTotal,
	}

	// Transient storage hiccups should not bounce the whole delivery back to
	// Stripe, so the transition gets a short in-process retry first.
	backoff := retry.WithMaxRetries(applyRetryAttempts, retry.NewExponential(applyRetryInitialPause))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := s.entitlements.ApplyPayment(ctx, payment); err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"account_id":       accountID.String(),
			"payment_event_id": eventID,
		})
		s.logg.Info(logCtx, "checkout completed; plan transition applied")
	}
	return nil
}

func accountIDFromMetadata(metadata map[string]string) (uuid.UUID, error) {
	raw, ok := metadata["account_id"]
	if !ok || raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "account_id missing from session metadata")
	}
	accountID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "account_id metadata is not a valid uuid")
	}
	return accountID, nil
}
