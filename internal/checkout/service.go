package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	checkoutsession "github.com/stripe/stripe-go/v84/checkout/session"

	"github.com/fechouapp/fechou-backend/internal/billing"
	"github.com/fechouapp/fechou-backend/pkg/config"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
	"github.com/fechouapp/fechou-backend/pkg/logger"
)

// SessionClient creates Stripe Checkout sessions; wrapped so the service can
// be tested without the Stripe API.
type SessionClient interface {
	Create(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeSessionClient struct{}

// NewStripeSessionClient returns the production Stripe-backed session client.
func NewStripeSessionClient() SessionClient {
	return &stripeSessionClient{}
}

func (c *stripeSessionClient) Create(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if params != nil {
		params.Context = ctx
	}
	return checkoutsession.New(params)
}

// Session is the thin result handed back to the frontend for redirecting.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Billing  *billing.Service
	Sessions SessionClient
	Config   config.BillingConfig
	Logger   *logger.Logger
}

// Service creates payment sessions for plan purchases. It is a pass-through to
// Stripe; entitlement changes happen only when the webhook confirms payment.
type Service struct {
	billing  *billing.Service
	sessions SessionClient
	cfg      config.BillingConfig
	logg     *logger.Logger
}

// NewService builds a checkout service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Billing == nil {
		return nil, fmt.Errorf("billing service required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session client required")
	}
	if strings.TrimSpace(params.Config.CheckoutSuccessURL) == "" {
		return nil, fmt.Errorf("checkout success url required")
	}
	if strings.TrimSpace(params.Config.CheckoutCancelURL) == "" {
		return nil, fmt.Errorf("checkout cancel url required")
	}
	return &Service{
		billing:  params.Billing,
		sessions: params.Sessions,
		cfg:      params.Config,
		logg:     params.Logger,
	}, nil
}

// CreateSession starts a Stripe Checkout session for the plan. The account id
// and price id ride along in metadata so the webhook can attribute the payment.
func (s *Service) CreateSession(ctx context.Context, accountID uuid.UUID, planID string) (*Session, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if strings.TrimSpace(planID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan_id is required")
	}

	plan, err := s.billing.FindPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.PriceAmount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "free plan does not require checkout")
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.CheckoutSuccessURL),
		CancelURL:  stripe.String(s.cfg.CheckoutCancelURL),
	}
	params.AddMetadata("account_id", accountID.String())
	params.AddMetadata("price_id", plan.StripePriceID)

	session, err := s.sessions.Create(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"account_id": accountID.String(),
			"plan_id":    plan.ID,
		})
		s.logg.Info(ctx, "checkout session created")
	}
	return &Session{ID: session.ID, URL: session.URL}, nil
}
