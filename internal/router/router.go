package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	accthandler "github.com/confetex/api/internal/accounting/handler"
	"github.com/confetex/api/internal/config"
	"github.com/confetex/api/internal/database"
	"github.com/confetex/api/internal/handler"
	mw "github.com/confetex/api/internal/middleware"
	"github.com/confetex/api/internal/service"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, school scoping, and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, cache handler.CatalogCache) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",       // Vite dev server
			"https://app.confetex.com.co", // Production app
			"https://stg.confetex.com.co", // Staging app
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	r.Route("/auth", authHandler.RegisterRoutes)

	productHandler := handler.NewProductHandler(queries, cache)
	garmentTypeHandler := handler.NewGarmentTypeHandler(queries, cache)
	pqrsHandler := handler.NewPqrsHandler(queries)

	// Public storefront routes: the merged catalog, garment type list and PQRS
	// intake are open so parents can browse and file requests without an account.
	r.Get("/global/catalog/grouped", productHandler.GroupedGlobalCatalog)
	r.Get("/global/garment-types", garmentTypeHandler.ListGlobal)
	r.Post("/global/pqrs", pqrsHandler.Create)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Alterations are a global workshop queue, visible to any signed-in
		// staff member regardless of school.
		alterationHandler := handler.NewAlterationHandler(
			queries,
			pool,
			func(db database.DBTX) handler.AlterationStore {
				return database.New(db)
			},
		)
		r.Route("/global/alterations", alterationHandler.RegisterRoutes)

		// Global administration (owner/admin only)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole("owner", "admin"))

			schoolHandler := handler.NewSchoolHandler(queries)
			r.Route("/global/schools", schoolHandler.RegisterRoutes)

			userHandler := handler.NewUserHandler(queries)
			r.Route("/global/users", userHandler.RegisterRoutes)

			r.Route("/global/products", productHandler.RegisterGlobalRoutes)

			// Garment type writes; the list stays on the public GET above.
			r.Post("/global/garment-types", garmentTypeHandler.CreateGlobal)
			r.Put("/global/garment-types/{id}", garmentTypeHandler.UpdateGlobal)
			r.Delete("/global/garment-types/{id}", garmentTypeHandler.DeleteGlobal)

			// PQRS management; intake stays on the public POST above.
			r.Get("/global/pqrs", pqrsHandler.List)
			r.Get("/global/pqrs/{id}", pqrsHandler.Get)
			r.Patch("/global/pqrs/{id}/status", pqrsHandler.UpdateStatus)
		})

		// School-scoped routes
		r.Route("/schools/{sid}", func(r chi.Router) {
			r.Use(mw.RequireSchool)

			r.Route("/products", productHandler.RegisterSchoolRoutes)
			r.Get("/catalog/grouped", productHandler.GroupedSchoolCatalog)
			r.Route("/garment-types", garmentTypeHandler.RegisterSchoolRoutes)

			clientHandler := handler.NewClientHandler(queries)
			r.Route("/clients", clientHandler.RegisterRoutes)

			// Orders
			newOrderStore := func(db database.DBTX) service.OrderStore {
				return database.New(db)
			}
			orderService := service.NewOrderService(pool, newOrderStore)
			orderHandler := handler.NewOrderHandler(
				queries,
				pool,
				func(db database.DBTX) handler.OrderStore {
					return database.New(db)
				},
				orderService,
			)
			r.Route("/orders", func(r chi.Router) {
				orderHandler.RegisterRoutes(r)

				// Payments (nested under orders)
				r.Route("/{id}/payments", func(r chi.Router) {
					paymentHandler := handler.NewPaymentHandler(
						queries,
						pool,
						func(db database.DBTX) handler.PaymentStore {
							return database.New(db)
						},
					)
					paymentHandler.RegisterRoutes(r)
				})
			})

			// Cash boxes (owner/admin only)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole("owner", "admin"))
				cashboxHandler := accthandler.NewCashboxHandler(queries)
				r.Route("/accounting", cashboxHandler.RegisterRoutes)
			})
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
