package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/apexplus/storefront/internal/assistant"
	"github.com/apexplus/storefront/internal/service"
	"github.com/apexplus/storefront/pkg/health"
	"github.com/apexplus/storefront/pkg/middleware"
)

// RouterConfig bundles the collaborators the router needs.
type RouterConfig struct {
	Catalog   *service.CatalogService
	Cart      *service.CartService
	Orders    *service.OrderService
	Checkout  *service.CheckoutService
	Assistant *assistant.Client
	Health    *health.Handler
	CORS      middleware.CORSConfig
	Logger    *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	catalogHandler := NewCatalogHandler(cfg.Catalog, cfg.Logger)
	cartHandler := NewCartHandler(cfg.Cart, cfg.Logger)
	orderHandler := NewOrderHandler(cfg.Orders, cfg.Checkout, cfg.Logger)
	assistantHandler := NewAssistantHandler(cfg.Assistant, cfg.Catalog, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", catalogHandler.CreateCategory)
			r.Get("/", catalogHandler.ListCategories)
			r.Get("/{id}", catalogHandler.GetCategory)
			r.Put("/{id}", catalogHandler.UpdateCategory)
			r.Delete("/{id}", catalogHandler.DeleteCategory)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", catalogHandler.CreateProduct)
			r.Get("/", catalogHandler.ListProducts)
			r.Get("/{id}", catalogHandler.GetProduct)
			r.Put("/{id}", catalogHandler.UpdateProduct)
			r.Delete("/{id}", catalogHandler.DeleteProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Delete("/items/{index}", cartHandler.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.CreateOrder)
			r.Get("/", orderHandler.ListOrders)
			r.Get("/{id}", orderHandler.GetOrder)
			r.Put("/{id}/status", orderHandler.UpdateOrderStatus)
		})

		r.Post("/checkout", orderHandler.Checkout)

		r.Route("/assistant", func(r chi.Router) {
			r.Post("/description", assistantHandler.GenerateDescription)
			r.Post("/advice", assistantHandler.GetAdvice)
		})
	})

	return r
}
