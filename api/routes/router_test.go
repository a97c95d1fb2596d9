package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/fechouapp/fechou-backend/internal/aichat"
	"github.com/fechouapp/fechou-backend/internal/checkout"
	"github.com/fechouapp/fechou-backend/internal/contracts"
	"github.com/fechouapp/fechou-backend/internal/entitlements"
	"github.com/fechouapp/fechou-backend/internal/proposals"
	pkgauth "github.com/fechouapp/fechou-backend/pkg/auth"
	"github.com/fechouapp/fechou-backend/pkg/config"
	"github.com/fechouapp/fechou-backend/pkg/db/models"
	"github.com/fechouapp/fechou-backend/pkg/enums"
	"github.com/fechouapp/fechou-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubProposalService struct{}

func (stubProposalService) Create(ctx context.Context, accountID uuid.UUID, input proposals.CreateProposalInput) (*proposals.ProposalDTO, error) {
	return &proposals.ProposalDTO{ID: uuid.New()}, nil
}

func (stubProposalService) Get(ctx context.Context, accountID, proposalID uuid.UUID) (*proposals.ProposalDTO, error) {
	return &proposals.ProposalDTO{ID: proposalID}, nil
}

func (stubProposalService) List(ctx context.Context, input proposals.ListProposalsInput) (*proposals.ProposalListResult, error) {
	return &proposals.ProposalListResult{Proposals: []proposals.ProposalDTO{}}, nil
}

func (stubProposalService) UpdateStatus(ctx context.Context, accountID, proposalID uuid.UUID, status enums.ProposalStatus) (*proposals.ProposalDTO, error) {
	return &proposals.ProposalDTO{ID: proposalID}, nil
}

func (stubProposalService) Delete(ctx context.Context, accountID, proposalID uuid.UUID) error {
	return nil
}

type stubContractService struct{}

func (stubContractService) Create(ctx context.Context, accountID uuid.UUID, input contracts.CreateContractInput) (*contracts.ContractDTO, error) {
	return &contracts.ContractDTO{ID: uuid.New()}, nil
}

func (stubContractService) Get(ctx context.Context, accountID, contractID uuid.UUID) (*contracts.ContractDTO, error) {
	return &contracts.ContractDTO{ID: contractID}, nil
}

func (stubContractService) List(ctx context.Context, input contracts.ListContractsInput) (*contracts.ContractListResult, error) {
	return &contracts.ContractListResult{Contracts: []contracts.ContractDTO{}}, nil
}

func (stubContractService) UpdateStatus(ctx context.Context, accountID, contractID uuid.UUID, status enums.ContractStatus) (*contracts.ContractDTO, error) {
	return &contracts.ContractDTO{ID: contractID}, nil
}

func (stubContractService) Delete(ctx context.Context, accountID, contractID uuid.UUID) error {
	return nil
}

type stubChatService struct{}

func (stubChatService) History(ctx context.Context, accountID uuid.UUID) ([]aichat.MessageDTO, error) {
	return []aichat.MessageDTO{}, nil
}

func (stubChatService) Send(ctx context.Context, accountID uuid.UUID, content string) (*aichat.SendResult, error) {
	return &aichat.SendResult{}, nil
}

type stubPlanService struct{}

func (stubPlanService) ListActivePlans(ctx context.Context) ([]models.BillingPlan, error) {
	return []models.BillingPlan{}, nil
}

type stubUsageService struct{}

func (stubUsageService) Usage(ctx context.Context, accountID uuid.UUID) (*entitlements.UsageSummary, error) {
	return &entitlements.UsageSummary{Plan: enums.PlanFree}, nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) CreateSession(ctx context.Context, accountID uuid.UUID, planID string) (*checkout.Session, error) {
	return &checkout.Session{ID: "cs_test", URL: "https://checkout.stripe.com/test"}, nil
}

type stubWebhookService struct{}

func (stubWebhookService) HandleEvent(ctx context.Context, event *stripe.Event) error {
	return nil
}

type stubStripeClient struct{}

func (stubStripeClient) SigningSecret() string {
	return "whsec_test"
}

type stubStripeGuard struct{}

func (stubStripeGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	return false, nil
}

func (stubStripeGuard) Delete(ctx context.Context, eventID string) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(RouterParams{
		Config:       cfg,
		Logger:       logg,
		DBPinger:     stubPinger{},
		RedisPinger:  stubPinger{},
		Proposals:    stubProposalService{},
		Contracts:    stubContractService{},
		Chat:         stubChatService{},
		Plans:        stubPlanService{},
		Usage:        stubUsageService{},
		Checkout:     stubCheckoutService{},
		StripeHook:   stubWebhookService{},
		StripeClient: stubStripeClient{},
		StripeGuard:  stubStripeGuard{},
	})
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		AccountID: uuid.New(),
		Email:     "dev@fechou.app",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthEndpointsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestMetricsEndpointIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestAuthedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{
		"/api/v1/proposals",
		"/api/v1/contracts",
		"/api/v1/chat/messages",
		"/api/v1/billing/usage",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s without token got %d", path, resp.Code)
		}
	}
}

func TestAuthedGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := buildToken(t, cfg)

	for _, path := range []string{
		"/api/v1/proposals",
		"/api/v1/contracts",
		"/api/v1/chat/messages",
		"/api/v1/billing/plans",
		"/api/v1/billing/usage",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestProposalCreateValidatesPayload(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/proposals", strings.NewReader(`{"client_name":"x"}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestCheckoutReturnsCreated(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout", strings.NewReader(`{"plan_id":"professional"}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for checkout got %d", resp.Code)
	}
}
