package api

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/example/storefront-checkout/internal/api/middleware"
	"github.com/example/storefront-checkout/internal/auth"
)

// RouterConfig holds the HTTP surface options.
type RouterConfig struct {
	AllowedOrigin string
}

func NewRouter(handlers *Handlers, jwtService *auth.JWTService, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(withLogging)

	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session)

		// Checkout
		r.With(
			middleware.CORS(cfg.AllowedOrigin, http.MethodPost, http.MethodOptions),
			middleware.IdentifyCustomer(jwtService),
		).Group(func(r chi.Router) {
			r.Post("/create-checkout-session", handlers.CreateCheckoutSession)
			r.Options("/create-checkout-session", handlers.CreateCheckoutSession)
		})

		// Errors
		r.Get("/errors", handlers.GetErrors)

		// Warranties
		r.Get("/products/{productID}/warranties", handlers.GetProductWarranties)

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCustomer(jwtService))
			r.Use(middleware.RequireRole("admin"))
			r.Post("/admin/warranty-policies", handlers.CreateWarrantyPolicy)
		})
	})

	return r
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Printf("[API] %s %s %d %s reqID=%s", r.Method, r.URL.Path, ww.Status(), time.Since(start),
			chimiddleware.GetReqID(r.Context()))
	})
}
