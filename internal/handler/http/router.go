package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Lopega12/sirorko-code-challenge/internal/service"
	"github.com/Lopega12/sirorko-code-challenge/pkg/health"
	"github.com/Lopega12/sirorko-code-challenge/pkg/middleware"
)

const serviceName = "shop"

// RouterConfig carries the router's operational knobs.
type RouterConfig struct {
	CORS middleware.CORSConfig

	// Login endpoint rate limiting (per client IP).
	LoginRateRPS   int
	LoginRateBurst int

	// Catalog responses carry a Cache-Control header with this max-age.
	CatalogCacheMaxAge int

	PprofEnabled      bool
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all routes registered.
func NewRouter(
	userService *service.UserService,
	cartService *service.CartService,
	cartResolver *service.CartResolver,
	orderService *service.OrderService,
	productService *service.ProductService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Compress(5))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)
	}

	// Token validator that bridges to the user service (signature, expiry,
	// and revocation checks).
	tokenValidator := func(ctx context.Context, token string) (*middleware.Claims, error) {
		userID, err := userService.ValidateToken(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{UserID: userID.String()}, nil
	}

	// Auth endpoints
	authHandler := NewAuthHandler(userService, logger)
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.With(middleware.RateLimit(cfg.LoginRateRPS, cfg.LoginRateBurst, logger)).
			Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)
		r.Post("/logout", authHandler.Logout)
	})

	// Cart endpoints. Authentication is optional at the middleware level so
	// the resolver can order its format/existence/authentication/ownership
	// checks itself.
	cartHandler := NewCartHandler(cartResolver, cartService, logger)
	r.Route("/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.OptionalAuth(tokenValidator))

		registerCartRoutes(r, cartHandler)
		r.Route("/{cartRef}", func(r chi.Router) {
			registerCartRoutes(r, cartHandler)
		})
	})

	// Order endpoints (auth required)
	orderHandler := NewOrderHandler(orderService, logger)
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/{orderID}", orderHandler.GetOrder)
		r.Post("/{orderID}/cancel", orderHandler.CancelOrder)
	})

	// Catalog endpoints (public, cacheable)
	productHandler := NewProductHandler(productService, logger)
	r.Route("/api/products", func(r chi.Router) {
		r.Use(middleware.CacheControl(cfg.CatalogCacheMaxAge))

		r.Get("/", productHandler.ListProducts)
		r.Get("/{productID}", productHandler.GetProduct)
	})

	return r
}

// registerCartRoutes wires the cart operations onto a (possibly
// cart-reference-scoped) subrouter.
func registerCartRoutes(r chi.Router, h *CartHandler) {
	r.Get("/", h.GetCart)
	r.Post("/items", h.AddItem)
	r.Put("/items/{productID}", h.UpdateItem)
	r.Patch("/items/{productID}", h.UpdateItem)
	r.Delete("/items/{productID}", h.RemoveItem)
	r.Post("/checkout", h.Checkout)
}
