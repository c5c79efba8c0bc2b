package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/monicajeon28/cruiseguide-sub010/api/controllers"
	"github.com/monicajeon28/cruiseguide-sub010/api/middleware"
	"github.com/monicajeon28/cruiseguide-sub010/internal/ledger"
	"github.com/monicajeon28/cruiseguide-sub010/internal/sales"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/config"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/logger"
)

// Params are the dependencies the admin API is built from.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Ledger   ledger.Service
	Sales    sales.Service
	Gatherer prometheus.Gatherer
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, map[string]controllers.Pinger{
			"db":    p.DB,
			"redis": p.Redis,
		}))
	})

	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Route("/sales/{saleId}/ledger", func(r chi.Router) {
			r.Get("/", controllers.ListSaleLedger(p.Ledger, logg))
			r.Post("/sync", controllers.SyncSaleLedger(p.Ledger, logg))
		})
		r.Get("/payees/{profileId}/summary", controllers.PayeeSalesSummary(p.Sales, logg))
		r.Get("/leads/{leadId}/summary", controllers.LeadSalesSummary(p.Sales, logg))
	})

	return r
}
