package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Elavasaran/yummie-mart-porta/internal/auth"
	"github.com/Elavasaran/yummie-mart-porta/internal/metrics"
	"github.com/Elavasaran/yummie-mart-porta/internal/seller"
)

type RouterConfig struct {
	Sessions SessionStore
	Products ProductSource
	OTP      OTPService
	Tokens   TokenParser
	Signups  *seller.Signups
	Orders   *seller.OrderBook
	Quotes   *seller.QuoteBook

	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

// NewRouter builds the storefront API, wrapped for tracing.
func NewRouter(cfg RouterConfig) http.Handler {
	cartHandler := NewCartHandler(cfg.Sessions, cfg.Products, cfg.RequestTimeout)
	ordersHandler := NewOrdersHandler(cfg.Sessions, cfg.RequestTimeout)
	productHandler := NewProductHandler(cfg.Products, cfg.RequestTimeout)
	authHandler := NewAuthHandler(cfg.OTP)
	sellerHandler := NewSellerHandler(cfg.Signups, cfg.Orders, cfg.Quotes)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(metrics.Middleware)
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.Tokens))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/otp", authHandler.SendOTP)
			r.Post("/verify", authHandler.Verify)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/{id}", productHandler.GetProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Patch("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", ordersHandler.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{id}", ordersHandler.GetOrder)
			r.Post("/{id}/status", ordersHandler.AdvanceStatus)
		})

		r.Route("/seller", func(r chi.Router) {
			r.Post("/signup", sellerHandler.Signup)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(auth.RoleSeller))
				r.Get("/orders", sellerHandler.ListOrders)
				r.Post("/orders/{id}/advance", sellerHandler.AdvanceOrder)
				r.Post("/orders/{id}/invoice", sellerHandler.AttachInvoice)
				r.Get("/quotes", sellerHandler.ListQuotes)
				r.Post("/quotes/{id}", sellerHandler.SubmitQuote)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
