package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fechouapp/fechou-backend/api/controllers"
	billingcontrollers "github.com/fechouapp/fechou-backend/api/controllers/billing"
	webhookcontrollers "github.com/fechouapp/fechou-backend/api/controllers/webhooks"
	"github.com/fechouapp/fechou-backend/api/middleware"
	"github.com/fechouapp/fechou-backend/pkg/config"
	"github.com/fechouapp/fechou-backend/pkg/db"
	"github.com/fechouapp/fechou-backend/pkg/logger"
	"github.com/fechouapp/fechou-backend/pkg/redis"
)

// RouterParams groups everything the HTTP surface depends on.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    db.Pinger
	RedisPinger redis.Pinger

	Proposals    controllers.ProposalService
	Contracts    controllers.ContractService
	Chat         controllers.ChatService
	Plans        billingcontrollers.PlanService
	Usage        billingcontrollers.UsageService
	Checkout     billingcontrollers.CheckoutService
	StripeHook   webhookcontrollers.StripeWebhookService
	StripeClient webhookcontrollers.StripeClient
	StripeGuard  webhookcontrollers.StripeWebhookGuard
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DBPinger, params.RedisPinger))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(params.StripeHook, params.StripeClient, params.StripeGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/proposals", func(r chi.Router) {
			r.Post("/", controllers.ProposalCreate(params.Proposals, logg))
			r.Get("/", controllers.ProposalList(params.Proposals, logg))
			r.Get("/{proposalId}", controllers.ProposalDetail(params.Proposals, logg))
			r.Patch("/{proposalId}/status", controllers.ProposalUpdateStatus(params.Proposals, logg))
			r.Delete("/{proposalId}", controllers.ProposalDelete(params.Proposals, logg))
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", controllers.ContractCreate(params.Contracts, logg))
			r.Get("/", controllers.ContractList(params.Contracts, logg))
			r.Get("/{contractId}", controllers.ContractDetail(params.Contracts, logg))
			r.Patch("/{contractId}/status", controllers.ContractUpdateStatus(params.Contracts, logg))
			r.Delete("/{contractId}", controllers.ContractDelete(params.Contracts, logg))
		})

		r.Route("/chat", func(r chi.Router) {
			r.Get("/messages", controllers.ChatHistory(params.Chat, logg))
			r.Post("/messages", controllers.ChatSend(params.Chat, logg))
		})

		r.Route("/billing", func(r chi.Router) {
			r.Get("/plans", billingcontrollers.PlansList(params.Plans, logg))
			r.Get("/usage", billingcontrollers.UsageSummary(params.Usage, logg))
			r.Post("/checkout", billingcontrollers.CheckoutCreate(params.Checkout, logg))
		})
	})

	return r
}
