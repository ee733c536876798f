package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lutong-pos/terminal/internal/backend"
	"github.com/lutong-pos/terminal/internal/cart"
	"github.com/lutong-pos/terminal/internal/handler"
	"github.com/lutong-pos/terminal/internal/kitchen"
	"github.com/lutong-pos/terminal/internal/orders"
	"github.com/lutong-pos/terminal/internal/ws"
)

// New creates a Chi router with all screen-facing routes wired up.
func New(api *backend.Client, cartStore *cart.Store, mgr *orders.Manager, tracker *kitchen.Tracker, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // Vite dev server
			"http://localhost:4173", // Vite preview
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Live order events for kitchen and payment screens
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	r.Route("/api", func(r chi.Router) {
		productsHandler := handler.NewProductsHandler(api, cartStore)
		r.Route("/products", productsHandler.RegisterRoutes)

		cartHandler := handler.NewCartHandler(api, cartStore)
		r.Route("/cart", cartHandler.RegisterRoutes)

		ordersHandler := handler.NewOrdersHandler(mgr)
		r.Route("/orders", ordersHandler.RegisterRoutes)

		kitchenHandler := handler.NewKitchenHandler(mgr, tracker)
		r.Route("/kitchen", kitchenHandler.RegisterRoutes)

		paymentsHandler := handler.NewPaymentsHandler(mgr)
		r.Route("/payments", paymentsHandler.RegisterRoutes)

		reportsHandler := handler.NewReportsHandler(mgr)
		r.Route("/reports", reportsHandler.RegisterRoutes)
	})

	return r
}
