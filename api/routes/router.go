package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/brewhouse-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/brewhouse-backend/api/controllers/orders"
	"github.com/angelmondragon/brewhouse-backend/api/middleware"
	"github.com/angelmondragon/brewhouse-backend/internal/beers"
	"github.com/angelmondragon/brewhouse-backend/internal/customers"
	"github.com/angelmondragon/brewhouse-backend/internal/orders"
	"github.com/angelmondragon/brewhouse-backend/internal/shipments"
	"github.com/angelmondragon/brewhouse-backend/pkg/config"
	"github.com/angelmondragon/brewhouse-backend/pkg/db"
	"github.com/angelmondragon/brewhouse-backend/pkg/logger"
	"github.com/angelmondragon/brewhouse-backend/pkg/metrics"
)

// Observability groups what the operational endpoints need. RedisPinger is
// nil when the cache is disabled.
type Observability struct {
	DBPinger    db.Pinger
	RedisPinger controllers.Pinger
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	obs Observability,
	beerService beers.Service,
	customerService customers.Service,
	orderService orders.Service,
	shipmentService shipments.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(obs.HTTPMetrics),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    obs.DBPinger,
			"redis": obs.RedisPinger,
		}))
	})

	if obs.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(obs.Gatherer, promhttp.HandlerOpts{}))
	}

	maxPage := cfg.Pagination.MaxSize

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/beers", func(r chi.Router) {
			r.Get("/", controllers.ListBeers(beerService, maxPage, logg))
			r.Post("/", controllers.CreateBeer(beerService, logg))
			r.Get("/{beerId}", controllers.GetBeer(beerService, logg))
			r.Put("/{beerId}", controllers.UpdateBeer(beerService, logg))
			r.Delete("/{beerId}", controllers.DeleteBeer(beerService, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.ListCustomers(customerService, logg))
			r.Post("/", controllers.CreateCustomer(customerService, logg))
			r.Get("/{customerId}", controllers.GetCustomer(customerService, logg))
			r.Put("/{customerId}", controllers.UpdateCustomer(customerService, logg))
			r.Delete("/{customerId}", controllers.DeleteCustomer(customerService, logg))
		})

		r.Route("/beer-orders", func(r chi.Router) {
			list := ordercontrollers.ListOrders(orderService, maxPage, logg)
			r.Get("/", list)
			r.Get("/list", list)
			r.Post("/", ordercontrollers.CreateOrder(orderService, logg))
			r.Get("/{id}", ordercontrollers.GetOrder(orderService, logg))
			r.Delete("/{id}", ordercontrollers.DeleteOrder(orderService, logg))
		})

		r.Route("/beerorders/{beerOrderId}/shipments", func(r chi.Router) {
			r.Get("/", ordercontrollers.ListShipments(shipmentService, logg))
			r.Post("/", ordercontrollers.CreateShipment(shipmentService, logg))
			r.Get("/{id}", ordercontrollers.GetShipment(shipmentService, logg))
			r.Patch("/{id}", ordercontrollers.UpdateShipment(shipmentService, logg))
			r.Delete("/{id}", ordercontrollers.DeleteShipment(shipmentService, logg))
		})
	})

	return r
}
