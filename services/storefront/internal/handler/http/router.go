package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/EcommerceGo/pkg/health"
	"github.com/utafrali/EcommerceGo/pkg/middleware"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/region"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
)

// RouterConfig carries the HTTP-facing settings of the storefront.
type RouterConfig struct {
	Session       SessionConfig
	DefaultRegion string
	CORSOrigins   []string

	// CheckoutRPS limits checkout submissions per session; 0 disables.
	CheckoutRPS   float64
	CheckoutBurst int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	cartService *service.CartService,
	checkoutService *service.CheckoutService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	regions := region.ContextResolver{Default: cfg.DefaultRegion}
	cartHandler := NewCartHandler(cartService, regions, logger)
	checkoutHandler := NewCheckoutHandler(checkoutService, regions, logger)

	r.Route("/api/v1/storefront", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(ContentTypeJSON)
		r.Use(Session(cfg.Session, logger))
		r.Use(Region(cfg.DefaultRegion, logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/", cartHandler.CreateCart)
			r.Patch("/items/{productId}", cartHandler.UpdateItemQuantity)
			r.Post("/switch/{region}", cartHandler.SwitchRegion)
			r.Delete("/{cartId}", cartHandler.DeleteCart)
		})

		r.Route("/checkout", func(r chi.Router) {
			if cfg.CheckoutRPS > 0 {
				r.Use(middleware.RateLimit(cfg.CheckoutRPS, cfg.CheckoutBurst, logger))
			}
			r.Post("/", checkoutHandler.Checkout)
			r.Post("/paypal", checkoutHandler.CheckoutWithPaypal)
			r.Post("/paypal/complete", checkoutHandler.CompleteCheckoutWithPaypal)
		})
	})

	return r
}
